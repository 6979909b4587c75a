package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/store"
)

// Mutations are forwarded to the remote store and never applied locally;
// the mirror changes only when the resulting snapshot arrives.

func (s *Store) writeErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Error("remote write failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrRemoteWrite, op, err)
}

// SaveProject creates the project when it has no id and updates it
// otherwise. It returns the project id.
func (s *Store) SaveProject(ctx context.Context, p content.Project) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	remote, err := s.writer()
	if err != nil {
		return "", err
	}

	if p.ID == "" {
		p.DateCreated = s.now().UnixMilli()
		id, err := remote.Create(ctx, content.CollectionProjects, p)
		if err != nil {
			return "", s.writeErr("create project", err)
		}
		return id, nil
	}

	err = remote.Update(ctx, content.CollectionProjects, p.ID, map[string]any{
		"title":       p.Title,
		"category":    p.Category,
		"description": p.Description,
		"images":      p.Images,
		"isFeatured":  p.IsFeatured,
	})
	if err != nil {
		return "", s.writeErr("update project", err)
	}
	return p.ID, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.delete(ctx, content.CollectionProjects, id)
}

// SubmitBrief records a new brief. Status and submission time are always
// set here, whatever the caller passed.
func (s *Store) SubmitBrief(ctx context.Context, b content.Brief) (string, error) {
	b.Status = content.BriefNew
	if err := b.Validate(); err != nil {
		return "", err
	}
	remote, err := s.writer()
	if err != nil {
		return "", err
	}

	b.DateSubmitted = s.now().UnixMilli()
	id, err := remote.Create(ctx, content.CollectionBriefs, b)
	if err != nil {
		return "", s.writeErr("submit brief", err)
	}
	return id, nil
}

func (s *Store) SetBriefStatus(ctx context.Context, id, status string) error {
	if !content.IsBriefStatus(status) {
		return &content.ValidationError{Fields: []string{"status"}}
	}
	return s.update(ctx, content.CollectionBriefs, id, map[string]any{"status": status})
}

func (s *Store) DeleteBrief(ctx context.Context, id string) error {
	return s.delete(ctx, content.CollectionBriefs, id)
}

// SubmitReview records a review as pending; it stays off the public page
// until approved.
func (s *Store) SubmitReview(ctx context.Context, r content.Review) (string, error) {
	r.Status = content.ReviewPending
	if err := r.Validate(); err != nil {
		return "", err
	}
	remote, err := s.writer()
	if err != nil {
		return "", err
	}

	r.Date = s.now().UnixMilli()
	id, err := remote.Create(ctx, content.CollectionReviews, r)
	if err != nil {
		return "", s.writeErr("submit review", err)
	}
	return id, nil
}

func (s *Store) SetReviewStatus(ctx context.Context, id, status string) error {
	if !content.IsReviewStatus(status) {
		return &content.ValidationError{Fields: []string{"status"}}
	}
	return s.update(ctx, content.CollectionReviews, id, map[string]any{"status": status})
}

// ToggleReview flips a review between pending and approved based on the
// status currently mirrored.
func (s *Store) ToggleReview(ctx context.Context, id string) error {
	if _, err := s.writer(); err != nil {
		return err
	}
	r, ok := content.FindReview(s.Reviews(), id)
	if !ok {
		return fmt.Errorf("toggle review %s: %w", id, store.ErrNotFound)
	}
	return s.SetReviewStatus(ctx, id, content.NextReviewStatus(r.Status))
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	return s.delete(ctx, content.CollectionReviews, id)
}

// SaveSocials overwrites the settings document with links.
func (s *Store) SaveSocials(ctx context.Context, links content.SocialLinks) error {
	remote, err := s.writer()
	if err != nil {
		return err
	}
	if err := remote.SetDoc(ctx, content.CollectionSettings, content.SettingsSocialsDoc, links); err != nil {
		return s.writeErr("save socials", err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, collection, id string, fields map[string]any) error {
	remote, err := s.writer()
	if err != nil {
		return err
	}
	if err := remote.Update(ctx, collection, id, fields); err != nil {
		return s.writeErr("update "+collection, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, collection, id string) error {
	remote, err := s.writer()
	if err != nil {
		return err
	}
	if err := remote.Delete(ctx, collection, id); err != nil {
		return s.writeErr("delete "+collection, err)
	}
	return nil
}
