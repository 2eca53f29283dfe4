package media

import (
	"fmt"
	"sort"
	"strings"

	"github.com/khoahotran/summit-cms/pkg/apperror"
)

// OrphanedAsset identifies a remote asset that has no live record.
type OrphanedAsset struct {
	Collection string `json:"collection"`
	RemoteRef  string `json:"remote_ref"`
	URL        string `json:"url"`
}

// RecordCreateError reports an upload whose record could not be created. The asset stays in
// the remote store; cleaning it up is left to reconciliation.
type RecordCreateError struct {
	Asset OrphanedAsset
	Err   error
}

func (e *RecordCreateError) Error() string {
	return fmt.Sprintf("record create failed for %s in %q, remote asset orphaned: %v",
		e.Asset.RemoteRef, e.Asset.Collection, e.Err)
}

func (e *RecordCreateError) Unwrap() []error {
	return []error{apperror.ErrRecordCreateFailed, e.Err}
}

// PartialReorderError reports a per-item order write that stopped part way. Applied holds the
// ids whose order was written, Failed the ids whose write errored.
type PartialReorderError struct {
	Collection string
	Applied    []string
	Failed     map[string]error
}

func (e *PartialReorderError) Error() string {
	ids := e.FailedIDs()
	return fmt.Sprintf("reorder of %q partially applied: %d written, %d failed (%s)",
		e.Collection, len(e.Applied), len(ids), strings.Join(ids, ", "))
}

func (e *PartialReorderError) Unwrap() error {
	return apperror.ErrPartialReorder
}

func (e *PartialReorderError) FailedIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
