package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/store/redisstore"
)

func setupRedisState(t *testing.T) *Store {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	remote := redisstore.New(client)
	t.Cleanup(func() { _ = remote.Close() })

	return startStore(t, Options{Remote: remote, Now: time.Now})
}

func TestRedisRoundTrip(t *testing.T) {
	s := setupRedisState(t)
	ctx := context.Background()
	defaults := s.Site()

	require.Eventually(t, func() bool {
		st := s.Status()
		return st.Synced[content.CollectionProjects] && st.Synced[content.CollectionReviews] &&
			st.Synced[content.CollectionBriefs] && st.Synced[content.CollectionSettings]
	}, 2*time.Second, 10*time.Millisecond)

	t.Run("empty database shows defaults", func(t *testing.T) {
		assert.Len(t, s.Projects(), len(defaults.Projects))
		assert.True(t, s.Status().RemoteEmpty[content.CollectionProjects])
	})

	t.Run("submitted brief arrives through the feed", func(t *testing.T) {
		id, err := s.SubmitBrief(ctx, content.NewBrief("Jane", "Acme", "jane@acme.com", "Rebrand"))
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			_, ok := content.FindBrief(s.Briefs(), id)
			return ok
		}, 2*time.Second, 10*time.Millisecond)

		b, _ := content.FindBrief(s.Briefs(), id)
		assert.Equal(t, content.BriefNew, b.Status)
		assert.NotZero(t, b.DateSubmitted)

		require.NoError(t, s.SetBriefStatus(ctx, id, content.BriefReviewed))
		require.Eventually(t, func() bool {
			b, _ := content.FindBrief(s.Briefs(), id)
			return b.Status == content.BriefReviewed
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("first project replaces defaults", func(t *testing.T) {
		id, err := s.SaveProject(ctx, content.Project{Title: "Solo", Category: content.DefaultCategory, IsFeatured: true})
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			p := s.Projects()
			return len(p) == 1 && p[0].ID == id
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("review approval round trip", func(t *testing.T) {
		id, err := s.SubmitReview(ctx, content.Review{ClientName: "Omar", Content: "Sharp work", Rating: 5})
		require.NoError(t, err)
		require.Eventually(t, func() bool {
			_, ok := content.FindReview(s.Reviews(), id)
			return ok
		}, 2*time.Second, 10*time.Millisecond)
		assert.Empty(t, content.Approved(s.Reviews()), "pending reviews replace the approved defaults")

		approved := func() []content.Review { return content.Approved(s.Reviews()) }

		require.NoError(t, s.ToggleReview(ctx, id))
		require.Eventually(t, func() bool { return len(approved()) == 1 }, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, id, approved()[0].ID)

		require.NoError(t, s.ToggleReview(ctx, id))
		require.Eventually(t, func() bool { return len(approved()) == 0 }, 2*time.Second, 10*time.Millisecond)
		r, ok := content.FindReview(s.Reviews(), id)
		require.True(t, ok)
		assert.Equal(t, content.ReviewPending, r.Status)

		require.NoError(t, s.ToggleReview(ctx, id))
		require.Eventually(t, func() bool { return len(approved()) == 1 }, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, id, approved()[0].ID)
	})

	t.Run("socials overwrite", func(t *testing.T) {
		links := content.SocialLinks{Email: "studio@example.com", Behance: "https://behance.net/studio"}
		require.NoError(t, s.SaveSocials(ctx, links))
		require.Eventually(t, func() bool { return s.Socials() == links }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("deleting the last project keeps the last snapshot", func(t *testing.T) {
		p := s.Projects()
		require.Len(t, p, 1)
		v := s.Version()
		require.NoError(t, s.DeleteProject(ctx, p[0].ID))
		awaitVersion(t, s, v+1)
		assert.Len(t, s.Projects(), 1)
	})
}
