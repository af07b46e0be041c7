package domain

import "strings"

// ClassifyMessage derives the message type from the payload shape. Email wins
// over everything, then MMS, then SMS. Attachments turn a declared "sms" into MMS.
func ClassifyMessage(declaredType, from string, attachments []string) MessageType {
	declared := strings.ToLower(strings.TrimSpace(declaredType))

	switch {
	case declared == "email" || IsEmailAddress(from):
		return MessageTypeEmail
	case declared == "mms" || len(attachments) > 0:
		return MessageTypeMMS
	default:
		return MessageTypeSMS
	}
}

// ChannelFor maps a message type onto the conversation partition it lives in.
func ChannelFor(t MessageType) ChannelType {
	if t == MessageTypeEmail {
		return ChannelEmail
	}
	return ChannelSMS
}

// ProviderFor names the provider that carries a channel.
func ProviderFor(c ChannelType) string {
	if c == ChannelEmail {
		return ProviderSendGrid
	}
	return ProviderTwilio
}

// IsEmailAddress reports whether a participant looks like an email address.
func IsEmailAddress(participant string) bool {
	return strings.Contains(participant, "@")
}
