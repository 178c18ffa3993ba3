package plugin

// Capability names one operation a plugin may invoke against its host.
type Capability int

const (
	CapRequest Capability = iota
	CapRequestPhobos
	CapLink
	CapLinkDefault
	CapReadConfig
	CapWriteConfig
	CapReadSysConfig
	CapWriteSysConfig
	CapBootWithPhobos
	CapRemoveBootWithPhobos
	CapGetBootItems
	CapSubscribe
	CapUnsubscribe
	CapGetMergedDictionaries
	CapLog
)

var capabilityNames = map[Capability]string{
	CapRequest:               "Request",
	CapRequestPhobos:         "RequestPhobos",
	CapLink:                  "Link",
	CapLinkDefault:           "LinkDefault",
	CapReadConfig:            "ReadConfig",
	CapWriteConfig:           "WriteConfig",
	CapReadSysConfig:         "ReadSysConfig",
	CapWriteSysConfig:        "WriteSysConfig",
	CapBootWithPhobos:        "BootWithPhobos",
	CapRemoveBootWithPhobos:  "RemoveBootWithPhobos",
	CapGetBootItems:          "GetBootItems",
	CapSubscribe:             "Subscribe",
	CapUnsubscribe:           "Unsubscribe",
	CapGetMergedDictionaries: "GetMergedDictionaries",
	CapLog:                   "Log",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Capabilities returns every capability in declaration order.
func Capabilities() []Capability {
	caps := make([]Capability, 0, len(capabilityNames))
	for c := CapRequest; c <= CapLog; c++ {
		caps = append(caps, c)
	}
	return caps
}

// notSetMessage is the failure message for a capability with no handler.
func notSetMessage(c Capability) string {
	return c.String() + " handler not set"
}
