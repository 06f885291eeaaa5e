// Package media tracks uploaded images and videos referenced from
// rich-text content and reconciles deletion candidates against the
// finally saved document.
package media

import "fmt"

// Kind distinguishes the two media candidate namespaces.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Kinds lists every candidate namespace, in the order the commit
// protocol walks them.
var Kinds = []Kind{KindImage, KindVideo}

// StagingOwner is the owner key for content that has not been saved
// yet and so has no durable identifier.
const StagingOwner int64 = 0

// CandidateKey scopes a deletion-candidate set to a media kind and an
// owning entity. Owner 0 is the pre-save staging context.
type CandidateKey struct {
	Kind  Kind
	Owner int64
}

func (k CandidateKey) String() string {
	return fmt.Sprintf("delete_%s_candidates:%d", k.Kind, k.Owner)
}
