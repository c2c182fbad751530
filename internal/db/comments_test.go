package db

import (
	"fmt"
	"testing"
	"time"

	"fernlink/internal/models"
	"fernlink/internal/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *CommentStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := g.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewCommentStore(g)
}

// seedPost 创建帖子作者、一个普通读者和一篇帖子
func seedPost(t *testing.T, s *CommentStore) (author, reader models.User, post models.Post) {
	t.Helper()
	author = models.User{Username: "author", Email: "author@fernlink.test", Password: "x"}
	reader = models.User{Username: "reader", Email: "reader@fernlink.test", Password: "x"}
	if err := s.db.Create(&author).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	if err := s.db.Create(&reader).Error; err != nil {
		t.Fatalf("seed reader: %v", err)
	}
	post = models.Post{AuthorID: author.ID, Title: "hello", Body: "world"}
	if err := s.db.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return author, reader, post
}

func (s *CommentStore) mustCreate(t *testing.T, c models.Comment) models.Comment {
	t.Helper()
	if err := s.db.Create(&c).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return c
}

func TestEligibleForAutoreply_Predicate(t *testing.T) {
	s := newTestStore(t)
	author, reader, post := seedPost(t, s)

	now := time.Now().Unix()
	past := now - 60
	future := now + 3600

	// 唯一应该命中的：读者的顶层评论，已通过，截止时间已过
	due := s.mustCreate(t, models.Comment{
		PostID: post.ID, AuthorID: reader.ID, Body: "nice write-up",
		Status: models.StatusApproved, AutoreplyAt: &past,
	})

	// 已通过但 reply_to 非空的回复不参与
	s.mustCreate(t, models.Comment{
		PostID: post.ID, AuthorID: reader.ID, Body: "a reply",
		ReplyTo: &due.ID, Status: models.StatusApproved, AutoreplyAt: &past,
	})
	// 帖子作者自己的评论不参与
	s.mustCreate(t, models.Comment{
		PostID: post.ID, AuthorID: author.ID, Body: "self comment",
		Status: models.StatusApproved, AutoreplyAt: &past,
	})
	// 未审核 / 已拒绝不参与
	s.mustCreate(t, models.Comment{
		PostID: post.ID, AuthorID: reader.ID, Body: "pending",
		Status: models.StatusNotReviewed, AutoreplyAt: &past,
	})
	s.mustCreate(t, models.Comment{
		PostID: post.ID, AuthorID: reader.ID, Body: "rejected",
		Status: models.StatusRejected, AutoreplyAt: &past,
	})
	// 未到期 / 无截止时间不参与
	s.mustCreate(t, models.Comment{
		PostID: post.ID, AuthorID: reader.ID, Body: "not yet due",
		Status: models.StatusApproved, AutoreplyAt: &future,
	})
	s.mustCreate(t, models.Comment{
		PostID: post.ID, AuthorID: reader.ID, Body: "no deadline",
		Status: models.StatusApproved,
	})

	got, err := s.EligibleForAutoreply(now)
	if err != nil {
		t.Fatalf("EligibleForAutoreply: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d: %+v", len(got), got)
	}
	c := got[0]
	if c.CommentID != due.ID || c.PostID != post.ID || c.PostAuthorID != author.ID || c.Body != "nice write-up" {
		t.Errorf("unexpected candidate %+v", c)
	}
}

func TestUpdateStatus_IdempotentAndTerminal(t *testing.T) {
	s := newTestStore(t)
	_, reader, post := seedPost(t, s)
	c := s.mustCreate(t, models.Comment{PostID: post.ID, AuthorID: reader.ID, Body: "pending"})

	if err := s.UpdateStatus(c.ID, models.StatusApproved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	// 重复写入同一状态
	if err := s.UpdateStatus(c.ID, models.StatusApproved); err != nil {
		t.Fatalf("second UpdateStatus: %v", err)
	}
	// 终态不被另一个终态覆盖
	if err := s.UpdateStatus(c.ID, models.StatusRejected); err != nil {
		t.Fatalf("UpdateStatus on terminal comment: %v", err)
	}

	var got models.Comment
	if err := s.db.First(&got, c.ID).Error; err != nil {
		t.Fatalf("reload comment: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("expected status approved, got %v", got.Status)
	}
}

func TestUpdateStatus_MissingRowIsNoop(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpdateStatus(12345, models.StatusApproved); err != nil {
		t.Fatalf("expected no-op for missing comment, got %v", err)
	}
}

func TestUpdateStatus_InvalidatesListCache(t *testing.T) {
	s := newTestStore(t)
	_, reader, post := seedPost(t, s)
	c := s.mustCreate(t, models.Comment{PostID: post.ID, AuthorID: reader.ID, Body: "pending"})

	key := utils.CommentCacheKey(post.ID)
	utils.GetCache().Set(key, "stale listing", time.Minute)

	if err := s.UpdateStatus(c.ID, models.StatusApproved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if utils.GetCache().Get(key) != nil {
		t.Error("expected comment list cache to be dropped after status write")
	}
}

func TestCreateAutoreply(t *testing.T) {
	s := newTestStore(t)
	author, reader, post := seedPost(t, s)

	past := time.Now().Unix() - 60
	c := s.mustCreate(t, models.Comment{
		PostID: post.ID, AuthorID: reader.ID, Body: "nice write-up",
		Status: models.StatusApproved, AutoreplyAt: &past,
	})

	key := utils.CommentCacheKey(post.ID)
	utils.GetCache().Set(key, "stale listing", time.Minute)

	replyID, err := s.CreateAutoreply(c.ID, post.ID, author.ID, "thanks for reading")
	if err != nil {
		t.Fatalf("CreateAutoreply: %v", err)
	}

	var reply models.Comment
	if err := s.db.First(&reply, replyID).Error; err != nil {
		t.Fatalf("reload reply: %v", err)
	}
	if reply.ReplyTo == nil || *reply.ReplyTo != c.ID {
		t.Errorf("reply must point at the original comment, got %+v", reply.ReplyTo)
	}
	if reply.AuthorID != author.ID || reply.PostID != post.ID || reply.Body != "thanks for reading" {
		t.Errorf("unexpected reply %+v", reply)
	}
	if reply.Status != models.StatusNotReviewed {
		t.Errorf("autoreply must start unreviewed, got %v", reply.Status)
	}
	if reply.AutoreplyAt != nil {
		t.Error("autoreply itself must not carry a deadline")
	}

	// 截止时间在同一事务里被清空，不再进入候选集
	var original models.Comment
	if err := s.db.First(&original, c.ID).Error; err != nil {
		t.Fatalf("reload original: %v", err)
	}
	if original.AutoreplyAt != nil {
		t.Error("deadline must be cleared once the reply is posted")
	}

	if utils.GetCache().Get(key) != nil {
		t.Error("expected comment list cache to be dropped after reply insert")
	}
}

func TestCreateAutoreply_VanishedComment(t *testing.T) {
	s := newTestStore(t)
	author, reader, post := seedPost(t, s)

	past := time.Now().Unix() - 60
	c := s.mustCreate(t, models.Comment{
		PostID: post.ID, AuthorID: reader.ID, Body: "soon deleted",
		Status: models.StatusApproved, AutoreplyAt: &past,
	})
	if err := s.db.Delete(&models.Comment{}, c.ID).Error; err != nil {
		t.Fatalf("delete comment: %v", err)
	}

	if _, err := s.CreateAutoreply(c.ID, post.ID, author.ID, "too late"); err == nil {
		t.Fatal("expected error when the original comment is gone")
	}

	var count int64
	s.db.Model(&models.Comment{}).Where("reply_to = ?", c.ID).Count(&count)
	if count != 0 {
		t.Errorf("no reply may be inserted for a vanished comment, found %d", count)
	}
}
