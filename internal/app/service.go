package app

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"shop-agent/internal/ai"
	"shop-agent/internal/core"
	"shop-agent/internal/media"
)

// MessageResult is what every adapter (HTTP, REPL) renders to the user
// after one conversation turn.
type MessageResult struct {
	Intent     core.Intent
	State      core.OutcomeState
	Reply      string
	Transcript string // filled for voice input
	VoiceAudio []byte // filled when the reply should also be spoken
	Document   *core.DocumentAttachment
}

// ApplicationService is the single interface all adapters call. It
// decouples presentation from the classify/dispatch pipeline and owns
// the per-user turn serialization.
type ApplicationService interface {
	// HandleMessage runs one text turn: load recent memory, classify,
	// dispatch, store both sides of the exchange.
	HandleMessage(ctx context.Context, userID, text string) (*MessageResult, error)

	// HandleVoice transcribes the audio and runs the transcript as a
	// text turn. The reply is also synthesized to audio.
	HandleVoice(ctx context.Context, userID string, audio io.Reader, filename string) (*MessageResult, error)
}

const classifyApology = "Sorry, I could not understand that right now. Please try again."

type service struct {
	classifier ai.Classifier
	orch       *core.Orchestrator
	memory     core.MemoryService
	speech     media.SpeechService // nil when voice is disabled
	logger     *zap.Logger

	classifyTimeout time.Duration

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// New wires the application service. speech may be nil; HandleVoice
// then returns a media failure reply.
func New(cls ai.Classifier, orch *core.Orchestrator, mem core.MemoryService, speech media.SpeechService, classifyTimeout time.Duration, logger *zap.Logger) ApplicationService {
	if classifyTimeout <= 0 {
		classifyTimeout = 30 * time.Second
	}
	return &service{
		classifier:      cls,
		orch:            orch,
		memory:          mem,
		speech:          speech,
		logger:          logger,
		classifyTimeout: classifyTimeout,
		users:           make(map[string]*sync.Mutex),
	}
}

// userLock serializes turns per user. Different users proceed
// concurrently.
func (s *service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[userID]
	if !ok {
		l = &sync.Mutex{}
		s.users[userID] = l
	}
	return l
}

func (s *service) HandleMessage(ctx context.Context, userID, text string) (*MessageResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.runTurn(ctx, userID, text)
}

func (s *service) runTurn(ctx context.Context, userID, text string) (*MessageResult, error) {
	history, err := s.memory.Recent(ctx, userID, core.DefaultMemoryTurns)
	if err != nil {
		// Memory is an aid, not a dependency. Classify without it.
		s.logger.Warn("load conversation memory failed", zap.String("user", userID), zap.Error(err))
		history = nil
	}

	cctx, cancel := context.WithTimeout(ctx, s.classifyTimeout)
	cls, err := s.classifier.Classify(cctx, text, history)
	cancel()
	if err != nil {
		s.logger.Error("classification failed", zap.String("user", userID), zap.Error(err))
		cls = &core.Classification{
			Intent: core.IntentGeneralChat,
			Data:   map[string]any{},
			Reply:  classifyApology,
		}
	}

	out := s.orch.Dispatch(ctx, *cls)

	s.remember(ctx, userID, "user", text)
	s.remember(ctx, userID, "assistant", out.Reply)

	res := &MessageResult{
		Intent:   out.Intent,
		State:    out.State,
		Reply:    out.Reply,
		Document: out.Document,
	}
	if out.VoiceReply && s.speech != nil {
		audio, err := s.speech.Synthesize(ctx, out.Reply, media.DetectLanguage(out.Reply))
		if err != nil {
			s.logger.Warn("voice synthesis failed", zap.String("user", userID), zap.Error(err))
		} else {
			res.VoiceAudio = audio
		}
	}
	return res, nil
}

func (s *service) HandleVoice(ctx context.Context, userID string, audio io.Reader, filename string) (*MessageResult, error) {
	if s.speech == nil {
		return &MessageResult{
			Intent: core.IntentGeneralChat,
			State:  core.StateFailed,
			Reply:  "Voice messages are not enabled on this deployment.",
		}, nil
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	transcript, err := s.speech.Transcribe(ctx, audio, filename, "")
	if err != nil {
		s.logger.Error("transcription failed", zap.String("user", userID), zap.Error(err))
		return &MessageResult{
			Intent: core.IntentGeneralChat,
			State:  core.StateFailed,
			Reply:  "Sorry, I couldn't process that audio. Please try again or type the message.",
		}, nil
	}

	res, err := s.runTurn(ctx, userID, transcript)
	if err != nil {
		return nil, err
	}
	res.Transcript = transcript
	if res.VoiceAudio == nil {
		// A voice question deserves a voice answer even when the
		// classifier didn't ask for one.
		if out, err := s.speech.Synthesize(ctx, res.Reply, media.DetectLanguage(res.Reply)); err == nil {
			res.VoiceAudio = out
		}
	}
	return res, nil
}

// remember stores one memory turn best-effort. A full ledger with a
// lossy memory beats the reverse.
func (s *service) remember(ctx context.Context, userID, role, text string) {
	if text == "" {
		return
	}
	if err := s.memory.Append(ctx, userID, role, text); err != nil {
		s.logger.Warn("store conversation memory failed",
			zap.String("user", userID), zap.String("role", role), zap.Error(err))
	}
}
