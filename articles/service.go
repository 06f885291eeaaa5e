package articles

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/devlog/devlog-server/internal/errors"
	"github.com/devlog/devlog-server/media"
	"github.com/devlog/devlog-server/users"
)

// Service owns the article lifecycle and keeps the media staging area
// consistent with what articles actually reference.
type Service struct {
	repo     Repo
	media    *media.Reconciler
	imageDir string // root of per-user rich text image uploads
	videoDir string // root of per-user rich text video uploads
	log      zerolog.Logger
}

func NewService(repo Repo, reconciler *media.Reconciler, imageDir, videoDir string, log zerolog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[articles.NewService] repo not set")
	}
	if reconciler == nil {
		return nil, errors.New("[articles.NewService] reconciler not set")
	}
	return &Service{
		repo:     repo,
		media:    reconciler,
		imageDir: imageDir,
		videoDir: videoDir,
		log:      log,
	}, nil
}

// Create saves a new article and adopts any media staged while the
// author was drafting: staged candidate sets are promoted to the new
// article's ID and reconciled against the saved content, so uploads
// the author embedded and then removed before saving get cleaned up.
func (s *Service) Create(ctx context.Context, author *users.User, title, content, imgPath string) (*Article, error) {
	article, err := s.repo.Create(ctx, &Article{
		Title:    title,
		Content:  content,
		ImgPath:  imgPath,
		AuthorID: author.ID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "articles.Create")
	}

	for _, kind := range media.Kinds {
		if err := s.media.Promote(ctx, kind, media.StagingOwner, article.ID); err != nil {
			return nil, err
		}
		if err := s.media.Reconcile(ctx, media.CandidateKey{Kind: kind, Owner: article.ID}, content); err != nil {
			return nil, err
		}
	}
	return article, nil
}

// Update rewrites an article's content. Only the author may update.
// Media referenced by the old content but no longer by the new content
// is deleted, and the article's candidate sets are reconciled against
// the new content.
func (s *Service) Update(ctx context.Context, author *users.User, id int64, title, content, imgPath string) (*Article, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != author.ID {
		return nil, apperrors.ErrNotAuthor
	}

	oldRefs := s.media.References(existing.Content)
	newRefs := s.media.References(content)
	for url := range oldRefs {
		if _, ok := newRefs[url]; ok {
			continue
		}
		if err := s.media.RemoveReference(url); err != nil {
			s.log.Warn().Err(err).Str("url", url).Msg("failed to delete replaced media")
		}
	}

	existing.Title = title
	existing.Content = content
	if imgPath != "" {
		if existing.ImgPath != "" && existing.ImgPath != imgPath {
			if err := s.media.RemoveReference(existing.ImgPath); err != nil {
				s.log.Warn().Err(err).Str("url", existing.ImgPath).Msg("failed to delete replaced thumbnail")
			}
		}
		existing.ImgPath = imgPath
	}
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, errors.Wrap(err, "articles.Update")
	}

	for _, kind := range media.Kinds {
		if err := s.media.Promote(ctx, kind, media.StagingOwner, id); err != nil {
			return nil, err
		}
		if err := s.media.Reconcile(ctx, media.CandidateKey{Kind: kind, Owner: id}, content); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Delete removes an article together with every media file its content
// references, pruning the author's upload directories if they end up
// empty. Only the author may delete.
func (s *Service) Delete(ctx context.Context, author *users.User, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != author.ID {
		return apperrors.ErrNotAuthor
	}

	ownerDirs := map[media.Kind]string{
		media.KindImage: filepath.Join(s.imageDir, strconv.FormatInt(author.ID, 10)),
		media.KindVideo: filepath.Join(s.videoDir, strconv.FormatInt(author.ID, 10)),
	}
	for _, kind := range media.Kinds {
		key := media.CandidateKey{Kind: kind, Owner: id}
		if err := s.media.FullDelete(ctx, key, existing.Content, ownerDirs[kind]); err != nil {
			return err
		}
	}

	if existing.ImgPath != "" {
		if err := s.media.RemoveReference(existing.ImgPath); err != nil {
			s.log.Warn().Err(err).Str("url", existing.ImgPath).Msg("failed to delete article image")
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Article, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Article, error) {
	return s.repo.List(ctx)
}
