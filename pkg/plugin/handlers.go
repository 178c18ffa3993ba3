package plugin

import "context"

// Handler signatures. Every handler receives the caller context built by the
// plugin for that call, followed by the capability-specific arguments.
type (
	RequestFunc        func(ctx context.Context, caller CallerContext, command string, args []Value) (RequestResult, error)
	RequestPhobosFunc  func(ctx context.Context, caller CallerContext, args []Value) (RequestResult, error)
	LinkFunc           func(ctx context.Context, caller CallerContext, association LinkAssociation) (RequestResult, error)
	LinkDefaultFunc    func(ctx context.Context, caller CallerContext, protocol string) (RequestResult, error)
	ReadConfigFunc     func(ctx context.Context, caller CallerContext, key, targetPackage string) (ConfigResult, error)
	WriteConfigFunc    func(ctx context.Context, caller CallerContext, key, value, targetPackage string) (ConfigResult, error)
	ReadSysConfigFunc  func(ctx context.Context, caller CallerContext, key string) (ConfigResult, error)
	WriteSysConfigFunc func(ctx context.Context, caller CallerContext, key, value string) (ConfigResult, error)
	BootFunc           func(ctx context.Context, caller CallerContext, command string, priority int, args []Value) (BootResult, error)
	RemoveBootFunc     func(ctx context.Context, caller CallerContext, uuid string) (BootResult, error)
	BootItemsFunc      func(ctx context.Context, caller CallerContext) (RequestResult, error)
	SubscriptionFunc   func(ctx context.Context, caller CallerContext, category, name string, args []Value) (RequestResult, error)
	ThemeFunc          func(ctx context.Context, caller CallerContext) (ThemeResult, error)
	LogFunc            func(ctx context.Context, caller CallerContext, entry LogEntry) (RequestResult, error)
)

// Handlers is the table of host functions bound to one plugin instance. A nil
// field means the host does not support that capability; the bridge turns it
// into a failure result instead of calling through.
type Handlers struct {
	Request               RequestFunc
	RequestPhobos         RequestPhobosFunc
	Link                  LinkFunc
	LinkDefault           LinkDefaultFunc
	ReadConfig            ReadConfigFunc
	WriteConfig           WriteConfigFunc
	ReadSysConfig         ReadSysConfigFunc
	WriteSysConfig        WriteSysConfigFunc
	BootWithPhobos        BootFunc
	RemoveBootWithPhobos  RemoveBootFunc
	GetBootItems          BootItemsFunc
	Subscribe             SubscriptionFunc
	Unsubscribe           SubscriptionFunc
	GetMergedDictionaries ThemeFunc
	Log                   LogFunc
}

// Supports reports whether the slot for c is bound.
func (h *Handlers) Supports(c Capability) bool {
	if h == nil {
		return false
	}
	switch c {
	case CapRequest:
		return h.Request != nil
	case CapRequestPhobos:
		return h.RequestPhobos != nil
	case CapLink:
		return h.Link != nil
	case CapLinkDefault:
		return h.LinkDefault != nil
	case CapReadConfig:
		return h.ReadConfig != nil
	case CapWriteConfig:
		return h.WriteConfig != nil
	case CapReadSysConfig:
		return h.ReadSysConfig != nil
	case CapWriteSysConfig:
		return h.WriteSysConfig != nil
	case CapBootWithPhobos:
		return h.BootWithPhobos != nil
	case CapRemoveBootWithPhobos:
		return h.RemoveBootWithPhobos != nil
	case CapGetBootItems:
		return h.GetBootItems != nil
	case CapSubscribe:
		return h.Subscribe != nil
	case CapUnsubscribe:
		return h.Unsubscribe != nil
	case CapGetMergedDictionaries:
		return h.GetMergedDictionaries != nil
	case CapLog:
		return h.Log != nil
	}
	return false
}

// Supported lists the bound capabilities.
func (h *Handlers) Supported() []Capability {
	var caps []Capability
	for _, c := range Capabilities() {
		if h.Supports(c) {
			caps = append(caps, c)
		}
	}
	return caps
}
