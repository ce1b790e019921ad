package verification

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

const (
	PathText        = "text"
	PathContent     = "image_content"
	PathAIDetection = "ai_detection"

	StageTranslate  = "translate"
	StageClassify   = "classify"
	StageRetrieve   = "retrieve"
	StageAdjudicate = "adjudicate"
	StageForensic   = "forensic"
	StageVision     = "vision"

	DefaultStageTimeout = 60 * time.Second
)

// StageObserver receives one call per finished stage.
type StageObserver interface {
	ObserveStage(path, stage string, outcome Outcome, d time.Duration)
}

type AnalyzerDeps struct {
	Log          *logger.Logger
	Translator   Translator
	Classifier   Classifier
	Retriever    SourceRetriever
	Forensic     ForensicScorer
	TextModel    ChatModel
	TextModelID  string
	VisionModel  ChatModel
	VisionID     string
	StageTimeout time.Duration
	Observer     StageObserver
	Now          func() time.Time
}

// Analyzer sequences the verification stages for one submission and hands
// the signals to the adjudicators. It never returns an error: every stage
// failure is folded into the verdict outcome.
type Analyzer struct {
	log        *logger.Logger
	translator Translator
	classifier Classifier
	retriever  SourceRetriever
	forensic   ForensicScorer
	text       *TextAdjudicator
	vision     *VisionAnalyzer
	timeout    time.Duration
	observer   StageObserver
	now        func() time.Time
}

func NewAnalyzer(deps AnalyzerDeps) *Analyzer {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	timeout := deps.StageTimeout
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		log:        log.With("service", "Analyzer"),
		translator: deps.Translator,
		classifier: deps.Classifier,
		retriever:  deps.Retriever,
		forensic:   deps.Forensic,
		text:       NewTextAdjudicator(deps.TextModel, deps.TextModelID, timeout),
		vision:     NewVisionAnalyzer(deps.VisionModel, deps.VisionID, timeout),
		timeout:    timeout,
		observer:   deps.Observer,
		now:        now,
	}
}

func (a *Analyzer) VisionModelName() string { return a.vision.ModelName() }

func (a *Analyzer) observe(log *logger.Logger, path, stage string, outcome Outcome, start time.Time, errMsg string) {
	d := time.Since(start)
	kv := []interface{}{"path", path, "stage", stage, "outcome", string(outcome), "duration_ms", d.Milliseconds()}
	if errMsg != "" {
		log.Warn("verification stage degraded", append(kv, "error", errMsg)...)
	} else {
		log.Debug("verification stage finished", kv...)
	}
	if a.observer != nil {
		a.observer.ObserveStage(path, stage, outcome, d)
	}
}

// translateForClassifier returns the English rendition of claim, or the
// claim itself when translation is unavailable.
func (a *Analyzer) translateForClassifier(ctx context.Context, log *logger.Logger, claim string) string {
	start := time.Now()
	if a.translator == nil {
		a.observe(log, PathText, StageTranslate, OutcomeUnavailable, start, "")
		return claim
	}
	cctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()
	out, err := a.translator.Translate(cctx, claim, "fr", "en")
	if err != nil || strings.TrimSpace(out) == "" {
		msg := "empty translation"
		if err != nil {
			msg = err.Error()
		}
		a.observe(log, PathText, StageTranslate, OutcomeDegraded, start, msg)
		return claim
	}
	a.observe(log, PathText, StageTranslate, OutcomeOK, start, "")
	return out
}

// AnalyzeText runs translate -> (classify || retrieve) -> adjudicate. The
// classifier and the retriever are joined before adjudication.
func (a *Analyzer) AnalyzeText(ctx context.Context, submissionID, claim string) TextVerdict {
	log := a.log.With("submission_id", submissionID)
	now := a.now()

	translated := a.translateForClassifier(ctx, log, claim)

	var (
		cls Classification
		ret Retrieval
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		cls = classify(gctx, a.classifier, translated, a.timeout)
		a.observe(log, PathText, StageClassify, cls.Outcome, start, cls.Err)
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		ret = retrieve(gctx, a.retriever, claim, now, a.timeout)
		a.observe(log, PathText, StageRetrieve, ret.Outcome, start, ret.Err)
		return nil
	})
	_ = g.Wait()

	start := time.Now()
	v := a.text.Adjudicate(ctx, TextInput{Claim: claim, Classification: cls, Retrieval: ret, Now: now})
	if translated != claim {
		v.TranslatedText = translated
	}
	errMsg := ""
	if v.Outcome == OutcomeDegraded {
		errMsg = "adjudication call failed, classifier fallback"
	}
	a.observe(log, PathText, StageAdjudicate, v.Outcome, start, errMsg)
	return v
}

// ImageInput carries two renditions of the same image: a URL reachable by
// third-party scorers and the URL handed to the vision model (often a data
// URL).
type ImageInput struct {
	PublicURL string
	ModelURL  string
}

func (in ImageInput) modelURL() string {
	if in.ModelURL != "" {
		return in.ModelURL
	}
	return in.PublicURL
}

func (a *Analyzer) VerifyImageContent(ctx context.Context, verificationID string, img ImageInput, claim string) ImageVerdict {
	log := a.log.With("verification_id", verificationID)
	start := time.Now()
	v := a.vision.VerifyContent(ctx, img.modelURL(), claim, a.now())
	a.observe(log, PathContent, StageVision, v.Outcome, start, detailError(v))
	return v
}

// DetectAIImage scores the image with the forensic scorer first so the vision
// prompt can mention it, then lets the scorer decide when it is available.
func (a *Analyzer) DetectAIImage(ctx context.Context, verificationID string, img ImageInput) ImageVerdict {
	log := a.log.With("verification_id", verificationID)

	start := time.Now()
	forensic := ForensicScore{Outcome: OutcomeUnavailable}
	if img.PublicURL != "" {
		forensic = ScoreImage(ctx, a.forensic, img.PublicURL, a.timeout)
	}
	a.observe(log, PathAIDetection, StageForensic, forensic.Outcome, start, forensic.Err)

	start = time.Now()
	v := a.vision.DetectAI(ctx, img.modelURL(), forensic)
	a.observe(log, PathAIDetection, StageVision, v.Outcome, start, detailError(v))
	return v
}

func detailError(v ImageVerdict) string {
	if v.Details == nil {
		return ""
	}
	if s, ok := v.Details["error"].(string); ok {
		return s
	}
	return ""
}
