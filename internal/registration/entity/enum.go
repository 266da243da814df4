package entity

type Channel int16

const (
	ChannelUnknown Channel = 0

	// ChannelEmail delivers the code to an email address.
	ChannelEmail Channel = 1

	// ChannelPhone delivers the code to a phone number.
	ChannelPhone Channel = 2
)

func ChannelFromString(str string) Channel {
	switch str {
	case "email":
		return ChannelEmail
	case "phone":
		return ChannelPhone
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelPhone:
		return "phone"
	default:
		return "unknown"
	}
}

func (c Channel) IsUnknown() bool {
	switch c {
	case ChannelEmail, ChannelPhone:
		return false
	default:
		return true
	}
}
