package tags

import "github.com/yohamta/donburi"

var (
	Eye = donburi.NewTag().SetName("Eye")
)
