package messages

import "github.com/vbrandao/batepapo-server/internal/store"

// Visible reports whether requester may read msg. Status and public messages
// are visible to everyone; a private message only to its sender and its named
// recipient. Pure: no store access, no clock.
func Visible(requester string, msg *store.Message) bool {
	return msg.Type == store.MessageTypeStatus ||
		msg.Type == store.MessageTypePublic ||
		msg.From == requester ||
		msg.To == requester
}
