package arena

// Stats holds operation counters for an arena. Counters only grow; failed
// calls are counted in both the call and the failure counters.
type Stats struct {
	AllocCalls       int   `json:"alloc_calls"`       // Total Allocate() calls
	AllocFailures    int   `json:"alloc_failures"`    // Allocate() calls that returned an error
	FreeCalls        int   `json:"free_calls"`        // Total Free() calls
	FreeFailures     int   `json:"free_failures"`     // Free() calls that returned an error
	Splits           int   `json:"splits"`            // Blocks split on allocation
	CoalesceForward  int   `json:"coalesce_forward"`  // Merges with a free successor
	CoalesceBackward int   `json:"coalesce_backward"` // Merges into a free predecessor
	BytesAllocated   int64 `json:"bytes_allocated"`   // Payload bytes handed out
	BytesFreed       int64 `json:"bytes_freed"`       // Payload bytes returned
}

// Stats returns a copy of the arena's operation counters.
func (a *Arena) Stats() Stats {
	return a.stats
}
