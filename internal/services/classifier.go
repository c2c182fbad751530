package services

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// 分类标签，与审核模型的输出保持一致。
// worker 只认 LabelNeutral，其余一律拒绝。
const (
	LabelNeutral   = "NEITHER"
	LabelOffensive = "OFFENSIVE"
	LabelHate      = "HATE"
)

// Classifier 文本分类能力。Classify 是同步阻塞调用，
// 由审核 worker 独占线程串行执行。
type Classifier interface {
	Classify(text string) (string, error)
}

// LexiconEntry 词库中的一条规则。Pattern 为正则，
// Exceptions 列出允许放行的具体命中词。
type LexiconEntry struct {
	Label      string   `json:"label"`
	Pattern    string   `json:"pattern"`
	Exceptions []string `json:"exceptions"`

	re *regexp.Regexp
}

// LexiconClassifier 基于词库的冒犯/仇恨内容分类器。
// 词库在启动时一次性加载并编译，加载失败应当中止启动，
// 否则整个审核流程都无法工作。
type LexiconClassifier struct {
	entries []LexiconEntry
}

// NewLexiconClassifier 从 JSON 词库文件构建分类器。
func NewLexiconClassifier(path string) (*LexiconClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}

	var entries []LexiconEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	for i, e := range entries {
		entries[i].re, err = regexp.Compile(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", e.Pattern, err)
		}
		switch e.Label {
		case LabelOffensive, LabelHate:
		default:
			return nil, fmt.Errorf("lexicon entry %q: unknown label %q", e.Pattern, e.Label)
		}
	}

	return &LexiconClassifier{entries: entries}, nil
}

func normalize(text string) string {
	return strings.TrimSpace(strings.ToLower(text))
}

// Classify 扫描文本中的违禁词。命中 HATE 规则优先于 OFFENSIVE，
// 全部未命中返回 LabelNeutral。
func (c *LexiconClassifier) Classify(text string) (string, error) {
	label := LabelNeutral
	words := strings.Fields(normalize(text))

	for _, w := range words {
		for _, entry := range c.entries {
			match := entry.re.FindString(w)
			if match == "" {
				continue
			}

			isException := false
			for _, exc := range entry.Exceptions {
				if exc == match {
					isException = true
					break
				}
			}
			if isException {
				continue
			}

			if entry.Label == LabelHate {
				return LabelHate, nil
			}
			label = LabelOffensive
		}
	}

	return label, nil
}
