package realtime

import (
	"fmt"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/kernel"
)

// RoomKey identifies a logical delivery channel. Keys come in three shapes:
// "user:<id>" for one person's devices, "role:<role>" for everyone holding a
// role, and "order:<id>" for everyone tracking one order. A room exists only
// while it has members.
type RoomKey string

// UserRoom returns the room key addressing all of one user's connections.
func UserRoom(userID kernel.UUID) RoomKey {
	return RoomKey(fmt.Sprintf("user:%s", userID))
}

// RoleRoom returns the room key addressing every connection of a role.
func RoleRoom(role actor.Role) RoomKey {
	return RoomKey(fmt.Sprintf("role:%s", role))
}

// OrderRoom returns the room key for one order's trackers.
func OrderRoom(orderID kernel.UUID) RoomKey {
	return RoomKey(fmt.Sprintf("order:%s", orderID))
}
