package internal

import (
	"bitwise74/codedrop/internal/admins"
	"bitwise74/codedrop/internal/conversation"
	"bitwise74/codedrop/internal/gate"
	"bitwise74/codedrop/internal/registry"
	"bitwise74/codedrop/internal/service"
	"bitwise74/codedrop/internal/users"
	"bitwise74/codedrop/pkg/ratelimit"

	"gorm.io/gorm"
)

type Deps struct {
	DB            *gorm.DB
	Registry      *registry.Registry
	Users         *users.Directory
	Admins        *admins.Directory
	Conversations *conversation.Controller
	Gate          *gate.SubscriptionGate
	Limiter       *ratelimit.Limiter[int64]
	Broadcaster   *service.Broadcaster
	Queue         *service.UpdateQueue
}
