package diag

// Code identifies a Diagnostic's specific condition. Codes are grouped
// into phase-prefixed ranges, one thousand wide per producing package,
// so a bare number is enough to tell where a diagnostic came from.
type Code uint16

const (
	UnknownCode Code = 0

	// 1000s: metadata binding (internal/patchmeta).
	MetaInfo                       Code = 1000
	MetaDialectFallback            Code = 1001
	MetaCoalescedBufferNoPatchLocs Code = 1002
	MetaBufferNoPatchLocations     Code = 1003

	// 2000s: instruction-stream walkers (internal/txn, internal/dpu).
	WalkInfo Code = 2000

	// 3000s: container assembly (internal/container).
	ContainerInfo Code = 3000
)

func (c Code) String() string {
	switch c {
	case UnknownCode:
		return "unknown"
	case MetaInfo:
		return "meta-info"
	case MetaDialectFallback:
		return "meta-dialect-fallback"
	case MetaCoalescedBufferNoPatchLocs:
		return "meta-coalesced-buffer-no-patch-locations"
	case MetaBufferNoPatchLocations:
		return "meta-buffer-no-patch-locations"
	case WalkInfo:
		return "walk-info"
	case ContainerInfo:
		return "container-info"
	}
	return "unknown"
}
