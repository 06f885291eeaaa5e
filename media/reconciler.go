package media

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/devlog/devlog-server/staging"
)

// Reconciler stages deletion candidates for uploaded media and, at
// commit time, deletes the candidates the final content no longer
// references. A URL present in the final content is never deleted,
// whatever its candidate history: last state wins.
type Reconciler struct {
	store     staging.Store
	mediaDir  string // on-disk root that candidate URLs resolve against
	urlPrefix string // URL prefix identifying the application's own uploads
	log       zerolog.Logger
}

func NewReconciler(store staging.Store, mediaDir, urlPrefix string, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:     store,
		mediaDir:  mediaDir,
		urlPrefix: urlPrefix,
		log:       log,
	}
}

// Mark nominates URLs for deletion under the owner's candidate set and
// returns the number of new nominations (set semantics collapse
// duplicates). Candidate sets carry no TTL: they live until an
// explicit reconciliation consumes them.
func (r *Reconciler) Mark(ctx context.Context, key CandidateKey, urls []string) (int64, error) {
	if len(urls) == 0 {
		return 0, nil
	}
	added, err := r.store.SAddExpire(ctx, key.String(), 0, urls...)
	if err != nil {
		return 0, errors.Wrap(err, "media.Mark")
	}
	return added, nil
}

// Unmark withdraws nominations and returns the number removed.
func (r *Reconciler) Unmark(ctx context.Context, key CandidateKey, urls []string) (int64, error) {
	if len(urls) == 0 {
		return 0, nil
	}
	removed, err := r.store.SRem(ctx, key.String(), urls...)
	if err != nil {
		return 0, errors.Wrap(err, "media.Unmark")
	}
	return removed, nil
}

// Promote renames a candidate set from one owner key to another, used
// when staged content (owner 0) acquires a durable identifier on save.
// A missing source set means nothing was staged and is a no-op.
func (r *Reconciler) Promote(ctx context.Context, kind Kind, from, to int64) error {
	src := CandidateKey{Kind: kind, Owner: from}
	dst := CandidateKey{Kind: kind, Owner: to}
	if err := r.store.Rename(ctx, src.String(), dst.String()); err != nil {
		return errors.Wrap(err, "media.Promote")
	}
	return nil
}

// References extracts the media URLs the content embeds, scoped to the
// application's upload prefix.
func (r *Reconciler) References(body string) map[string]struct{} {
	return extractReferences(body, r.urlPrefix)
}

// Reconcile consumes the owner's candidate set against the finally
// saved content: every candidate absent from the final body is deleted
// from disk, candidates the user re-inserted are left alone, and the
// set is cleared. A missing candidate set is a no-op.
func (r *Reconciler) Reconcile(ctx context.Context, key CandidateKey, finalBody string) error {
	candidates, err := r.store.SMembers(ctx, key.String())
	if err != nil {
		return errors.Wrap(err, "media.Reconcile SMembers")
	}
	if len(candidates) == 0 {
		return nil
	}

	referenced := r.References(finalBody)
	for _, url := range candidates {
		if _, ok := referenced[url]; ok {
			continue
		}
		path, ok := r.filePath(url)
		if !ok {
			r.log.Warn().Str("url", url).Msg("candidate resolves outside the media root, skipping")
			continue
		}
		if err := RemoveFile(path); err != nil {
			r.log.Warn().Err(err).Str("url", url).Msg("failed to delete orphaned media")
			continue
		}
		r.log.Debug().Str("url", url).Stringer("key", key).Msg("deleted orphaned media")
	}

	if err := r.store.Del(ctx, key.String()); err != nil {
		return errors.Wrap(err, "media.Reconcile Del")
	}
	return nil
}

// FullDelete removes every media file the content references, prunes
// the owner's upload directory if it is now empty, and clears the
// candidate set. Used when the owning entity is hard-deleted.
func (r *Reconciler) FullDelete(ctx context.Context, key CandidateKey, body, ownerUploadDir string) error {
	for url := range r.References(body) {
		path, ok := r.filePath(url)
		if !ok {
			r.log.Warn().Str("url", url).Msg("reference resolves outside the media root, skipping")
			continue
		}
		if err := RemoveFile(path); err != nil {
			r.log.Warn().Err(err).Str("url", url).Msg("failed to delete media")
		}
	}

	if ownerUploadDir != "" {
		if err := RemoveEmptyDir(ownerUploadDir); err != nil {
			r.log.Warn().Err(err).Str("dir", ownerUploadDir).Msg("failed to prune upload dir")
		}
	}

	if err := r.store.Del(ctx, key.String()); err != nil {
		return errors.Wrap(err, "media.FullDelete Del")
	}
	return nil
}

// RemoveReference deletes the file backing a single media URL. URLs
// that escape the media root are ignored.
func (r *Reconciler) RemoveReference(url string) error {
	path, ok := r.filePath(url)
	if !ok {
		r.log.Warn().Str("url", url).Msg("reference resolves outside the media root, skipping")
		return nil
	}
	return RemoveFile(path)
}

// filePath resolves a candidate URL against the media root. URLs are
// client supplied, so the resolved path must stay under mediaDir: a
// URL whose cleaned path escapes the root (path traversal) is
// rejected with ok=false.
func (r *Reconciler) filePath(url string) (string, bool) {
	rel := strings.TrimPrefix(url, r.urlPrefix)
	path := filepath.Join(r.mediaDir, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	inside, err := filepath.Rel(r.mediaDir, path)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}
