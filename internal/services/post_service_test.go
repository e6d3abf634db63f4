package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conexahub/conexa/internal/database/testutil"
)

func TestCreatePost(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewPostService(db)
	require.NoError(t, err)

	author := approveAndRegister(t, db, "author@example.com")

	post, err := svc.Create(context.Background(), CreatePostInput{
		AuthorID: author.ID,
		Content:  "Closed a great deal thanks to a referral from this group!",
	})
	require.NoError(t, err)
	require.NotNil(t, post.Author)
	require.Equal(t, author.ID, *post.AuthorID)

	// Anonymous/administrative post without an author
	system, err := svc.Create(context.Background(), CreatePostInput{
		Content: "Welcome to the feed.",
	})
	require.NoError(t, err)
	require.Nil(t, system.AuthorID)

	_, err = svc.Create(context.Background(), CreatePostInput{Content: "  "})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreatePostInput{
		AuthorID: "missing-id",
		Content:  "ghost post",
	})
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestListPostsNewestFirst(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewPostService(db)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreatePostInput{Content: "first"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreatePostInput{Content: "second"})
	require.NoError(t, err)

	posts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
}

func TestDeletePostOwnership(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewPostService(db)
	require.NoError(t, err)

	author := approveAndRegister(t, db, "author@example.com")
	intruder := approveAndRegister(t, db, "intruder@example.com")

	post, err := svc.Create(context.Background(), CreatePostInput{
		AuthorID: author.ID,
		Content:  "my post",
	})
	require.NoError(t, err)

	// Someone else's delete is refused
	require.Error(t, svc.Delete(context.Background(), post.ID, intruder.ID))

	// Owner delete succeeds
	require.NoError(t, svc.Delete(context.Background(), post.ID, author.ID))
	_, err = svc.GetByID(context.Background(), post.ID)
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestAdminDeletePost(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewPostService(db)
	require.NoError(t, err)

	author := approveAndRegister(t, db, "author@example.com")
	post, err := svc.Create(context.Background(), CreatePostInput{
		AuthorID: author.ID,
		Content:  "moderated away",
	})
	require.NoError(t, err)

	// Empty requester skips the ownership check
	require.NoError(t, svc.Delete(context.Background(), post.ID, ""))
}
