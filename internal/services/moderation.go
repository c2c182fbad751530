package services

import (
	"sync"

	"fernlink/internal/models"

	"go.uber.org/zap"
)

// ModerationItem 审核队列中的一项：评论 ID 和创建时的文本快照。
type ModerationItem struct {
	CommentID uint
	Body      string
}

// StatusCallback 由审核 worker 调用，把分类结果写回评论存储。
// 实现必须幂等：同一 ID 重复写同一状态结果不变。
type StatusCallback func(commentID uint, status models.CommentStatus) error

// Enqueuer 审核队列的生产者视角。评论落库后立即调用，
// 自动回复调度器也用它把新生成的回复送审。
type Enqueuer interface {
	Enqueue(commentID uint, body string)
}

// ModerationService 单消费者审核队列。
// 生产者任意多（评论创建、回复、自动回复插入），worker 只有一个，
// 串行取出每条评论跑分类器，再通过回调写回状态。
// 队列无上界，Enqueue 不阻塞也不失败；FIFO 顺序由单 worker 保证。
type ModerationService struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []ModerationItem
	closed bool

	classifier Classifier
	apply      StatusCallback
	logger     *zap.SugaredLogger

	done chan struct{}
}

// NewModerationService 构造审核服务。分类器须在此之前加载完成，
// 加载失败应当中止进程而不是静默继续。
func NewModerationService(classifier Classifier, apply StatusCallback, logger *zap.SugaredLogger) *ModerationService {
	s := &ModerationService{
		classifier: classifier,
		apply:      apply,
		logger:     logger,
		done:       make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Start 启动后台 worker，进程生命周期内只调用一次。
func (s *ModerationService) Start() {
	go s.worker()
}

// Stop 关闭队列。worker 处理完剩余条目后退出，Stop 等待其结束。
func (s *ModerationService) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
	<-s.done
}

// Enqueue 非阻塞入队。队列已关闭时丢弃并记录（只发生在停机窗口）。
func (s *ModerationService) Enqueue(commentID uint, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warnw("审核队列已关闭，丢弃评论", "comment_id", commentID)
		return
	}
	s.items = append(s.items, ModerationItem{CommentID: commentID, Body: body})
	s.cond.Signal()
}

// Pending 当前积压数量，仅用于观测。
func (s *ModerationService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// dequeue 阻塞等待下一项。队列关闭且排空后返回 false。
func (s *ModerationService) dequeue() (ModerationItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.items) == 0 && !s.closed {
		s.cond.Wait()
	}
	if len(s.items) == 0 {
		return ModerationItem{}, false
	}
	item := s.items[0]
	s.items = s.items[1:]
	return item, true
}

func (s *ModerationService) worker() {
	defer close(s.done)
	s.logger.Infow("审核 worker 启动")

	for {
		item, ok := s.dequeue()
		if !ok {
			s.logger.Infow("审核队列关闭，worker 退出")
			return
		}

		label, err := s.classifier.Classify(item.Body)
		if err != nil {
			// 分类失败的评论直接丢弃，不重试不回队；
			// 评论停留在 NOT_REVIEWED 是可接受的降级，worker 继续消费。
			s.logger.Errorw("分类失败，丢弃该评论", "comment_id", item.CommentID, "err", err)
			continue
		}

		status := models.StatusRejected
		if label == LabelNeutral {
			status = models.StatusApproved
		}

		if err := s.apply(item.CommentID, status); err != nil {
			s.logger.Errorw("写回审核状态失败", "comment_id", item.CommentID, "status", status.String(), "err", err)
			continue
		}
		s.logger.Infow("评论审核完成", "comment_id", item.CommentID, "label", label, "status", status.String())
	}
}
