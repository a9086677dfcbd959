package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"ngmi-backend/internal/shared/apperr"
	"ngmi-backend/internal/shared/telemetry"
)

const defaultRetryDelay = 300 * time.Millisecond

// PromptOracle implements Oracle on top of a plain text Completer. Replies are
// expected to be JSON objects, optionally wrapped in a markdown code fence.
type PromptOracle struct {
	Completer  Completer
	RetryDelay time.Duration
}

// NewPromptOracle returns an oracle that prompts c. A nil completer behaves
// like Placeholder.
func NewPromptOracle(c Completer) *PromptOracle {
	if c == nil {
		c = Placeholder{}
	}
	return &PromptOracle{Completer: c, RetryDelay: defaultRetryDelay}
}

type scoreReply struct {
	Score    *float64 `json:"ngmi_score"`
	Comment  string   `json:"comment"`
	Feedback string   `json:"feedback"`
}

type skillsReply struct {
	Skills []string `json:"skills"`
}

// Score asks the model for an NGMI verdict.
func (o *PromptOracle) Score(ctx context.Context, resumeText, jobDescription string) (Verdict, error) {
	raw, err := o.complete(ctx, "score", buildScorePrompt(resumeText, jobDescription))
	if err != nil {
		return Verdict{}, err
	}
	v, err := ParseVerdict(raw)
	if err != nil {
		return Verdict{}, apperr.Wrap(apperr.ErrUpstream, "invalid score reply", err)
	}
	return v, nil
}

// ExtractSkills asks the model for the skills named in a resume.
func (o *PromptOracle) ExtractSkills(ctx context.Context, resumeText string) ([]string, error) {
	raw, err := o.complete(ctx, "skills", buildSkillsPrompt(resumeText))
	if err != nil {
		return nil, err
	}
	skills, err := ParseSkills(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUpstream, "invalid skills reply", err)
	}
	return skills, nil
}

func (o *PromptOracle) complete(ctx context.Context, op, prompt string) (string, error) {
	completer := o.Completer
	if completer == nil {
		completer = Placeholder{}
	}

	raw, err := completer.Complete(ctx, prompt)
	if err != nil && shouldRetry(err) {
		delay := o.RetryDelay
		if delay <= 0 {
			delay = defaultRetryDelay
		}
		telemetry.Warn("llm.retry", map[string]any{
			"op":       op,
			"attempt":  1,
			"delay_ms": delay.Milliseconds(),
			"error":    err,
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", apperr.Wrap(apperr.ErrUpstream, "llm "+op+" cancelled", ctx.Err())
		}
		raw, err = completer.Complete(ctx, prompt)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.ErrUpstream, "llm "+op+" failed", err)
	}
	return raw, nil
}

// ParseVerdict decodes a score reply. The score must be a finite number in
// [0, 100] and the comment must not be blank.
func ParseVerdict(raw string) (Verdict, error) {
	var reply scoreReply
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &reply); err != nil {
		return Verdict{}, fmt.Errorf("decode: %w", err)
	}
	if reply.Score == nil {
		return Verdict{}, errors.New("missing ngmi_score")
	}
	score := *reply.Score
	if math.IsNaN(score) || score < 0 || score > 100 {
		return Verdict{}, fmt.Errorf("ngmi_score %v out of range", score)
	}
	comment := strings.TrimSpace(reply.Comment)
	if comment == "" {
		return Verdict{}, errors.New("missing comment")
	}
	return Verdict{
		Score:    score,
		Comment:  comment,
		Feedback: strings.TrimSpace(reply.Feedback),
	}, nil
}

// ParseSkills decodes a skills reply. Both {"skills": [...]} and a bare JSON
// array are accepted; blank entries are dropped.
func ParseSkills(raw string) ([]string, error) {
	body := stripCodeFence(raw)

	var names []string
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &names); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	} else {
		var reply skillsReply
		if err := json.Unmarshal([]byte(body), &reply); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		names = reply.Skills
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func shouldRetry(err error) bool {
	if err == nil || errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "unexpected eof")
}

var _ Oracle = (*PromptOracle)(nil)
