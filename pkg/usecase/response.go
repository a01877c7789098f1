package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"github.com/secmon-lab/lumi/pkg/service/personality"
	"github.com/secmon-lab/lumi/pkg/utils/errutil"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"github.com/secmon-lab/lumi/pkg/utils/metrics"
)

//go:embed prompt/companion_system.md
var companionSystemPromptTmpl string

var companionSystemPrompt = template.Must(template.New("companion_system").Parse(companionSystemPromptTmpl))

// ApologyMessage is returned when reply generation fails unexpectedly
const ApologyMessage = "I'm having trouble thinking of a response right now. Could you try asking me something else?"

const (
	// proactiveMaxMessageLength is the trimmed message length below which a
	// proactive message replaces the reply
	proactiveMaxMessageLength = 3

	// maxPromptTurns is the number of history turns sent to the chat model
	maxPromptTurns = 5

	personalInfoImportance = 5
)

const (
	ruleMorning = "morning"
	ruleEvening = "evening"
	ruleOverdue = "overdue"
)

// selfDisclosurePhrases mark a message as sharing personal information
var selfDisclosurePhrases = []string{"my name is", "i'm ", "i am ", "i'm from", "i live in"}

// Placeholders used in the system prompt for empty context sections
const (
	noProfilePlaceholder = "No profile information available."
	noPlanPlaceholder    = "No plans for today."
	noMemoryPlaceholder  = "No relevant memories found."
	noHistoryPlaceholder = "No recent conversation history."
)

// ResponseGenerator produces the companion's reply to one user message
type ResponseGenerator struct {
	repo      interfaces.Repository
	memory    *MemoryStore
	assembler *ContextAssembler
	plans     *PlanUseCase
	engine    *personality.Engine
	chatModel interfaces.ChatModel
	metrics   *metrics.Recorder
	now       func() time.Time
}

// NewResponseGenerator creates a ResponseGenerator. chatModel may be nil, in which
// case every reply comes from the personality engine.
func NewResponseGenerator(
	repo interfaces.Repository,
	memory *MemoryStore,
	assembler *ContextAssembler,
	plans *PlanUseCase,
	engine *personality.Engine,
	chatModel interfaces.ChatModel,
	recorder *metrics.Recorder,
) *ResponseGenerator {
	return &ResponseGenerator{
		repo:      repo,
		memory:    memory,
		assembler: assembler,
		plans:     plans,
		engine:    engine,
		chatModel: chatModel,
		metrics:   recorder,
		now:       time.Now,
	}
}

// PersonaName returns the name the companion speaks as
func (g *ResponseGenerator) PersonaName() string {
	return g.engine.Persona().Name
}

// Generate returns the reply to message. It never fails: remote failures fall back
// to the personality engine and unexpected panics yield ApologyMessage.
func (g *ResponseGenerator) Generate(ctx context.Context, userID, message string, history []model.Turn) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			errutil.Handle(ctx, goerr.New("panic while generating response",
				goerr.V(UserIDKey, userID),
				goerr.V("panic", fmt.Sprint(r)),
			), "response generation aborted")
			reply = ApologyMessage
		}
	}()

	bundle := g.assembler.BuildContext(ctx, userID, history)

	trimmed := strings.TrimSpace(message)
	if proactive := g.proactive(ctx, userID); proactive != "" && utf8.RuneCountInString(trimmed) < proactiveMaxMessageLength {
		return proactive
	}

	if g.chatModel != nil {
		text, err := g.remote(ctx, bundle, message, history)
		if err == nil && text != "" {
			return text
		}
		logging.From(ctx).Warn("chat model unavailable, using fallback reply",
			slog.Any("error", err),
			slog.String("user_id", userID),
		)
	}

	return g.fallback(ctx, userID, message)
}

// proactive evaluates the morning, evening and overdue rules in order and returns
// the message of the first one that fires, or "".
func (g *ResponseGenerator) proactive(ctx context.Context, userID string) string {
	now := g.now().UTC()
	hour := now.Hour()
	logger := logging.From(ctx).With(slog.String("user_id", userID))

	switch {
	case hour >= 7 && hour < 10:
		if g.claimMarker(ctx, userID, now, types.TagCheckin, "Morning check-in completed", "system_checkin") {
			g.metrics.ProactiveMessage(ruleMorning)
			return g.engine.MorningGreeting(g.userName(ctx, userID))
		}
	case hour >= 20 && hour < 23:
		if g.claimMarker(ctx, userID, now, types.TagReflection, "Evening reflection completed", "system_reflection") {
			g.metrics.ProactiveMessage(ruleEvening)
			return g.engine.EveningPrompt()
		}
	}

	if g.plans == nil {
		return ""
	}
	tasks, err := g.plans.Overdue(ctx, userID)
	if err != nil {
		logger.Warn("failed to check overdue tasks", slog.Any("error", err))
		return ""
	}
	if notice, ok := g.engine.UrgentTasksNotice(tasks); ok {
		g.metrics.ProactiveMessage(ruleOverdue)
		return notice
	}
	return ""
}

// claimMarker writes today's marker for tag unless one exists and reports whether
// the rule should fire.
func (g *ResponseGenerator) claimMarker(ctx context.Context, userID string, now time.Time, tag, text, markerType string) bool {
	logger := logging.From(ctx).With(slog.String("user_id", userID), slog.String("tag", tag))

	exists, err := g.memory.HasMarkerSince(ctx, userID, tag, model.StartOfDay(now))
	if err != nil {
		logger.Warn("failed to look up proactive marker", slog.Any("error", err))
		return false
	}
	if exists {
		return false
	}

	if _, err := g.memory.Save(ctx, userID, text, []string{types.TagSystem, tag}, map[string]any{
		types.MetaType:      markerType,
		types.MetaTimestamp: now.Format(time.RFC3339),
	}); err != nil {
		logger.Warn("failed to save proactive marker", slog.Any("error", err))
	}
	return true
}

func (g *ResponseGenerator) userName(ctx context.Context, userID string) string {
	profile, err := g.repo.Profile().Get(ctx, userID)
	if err != nil {
		logging.From(ctx).Warn("failed to read profile", slog.Any("error", err), slog.String("user_id", userID))
		return ""
	}
	if profile == nil {
		return ""
	}
	return strings.TrimSpace(profile.PersonalInfo.Name)
}

type promptTrait struct {
	Name      string
	Intensity int
}

type companionPromptData struct {
	PersonaName string
	Traits      []promptTrait
	ProfileInfo string
	DailyPlan   string
	Memories    string
	ChatHistory string
	CurrentTime string
}

func (g *ResponseGenerator) buildSystemPrompt(bundle *model.ContextBundle) (string, error) {
	persona := g.engine.Persona()
	data := companionPromptData{
		PersonaName: persona.Name,
		ProfileInfo: orDefault(bundle.ProfileInfo, noProfilePlaceholder),
		DailyPlan:   orDefault(bundle.DailyPlan, noPlanPlaceholder),
		Memories:    orDefault(bundle.Memories, noMemoryPlaceholder),
		ChatHistory: orDefault(bundle.ChatHistory, noHistoryPlaceholder),
		CurrentTime: bundle.CurrentTime,
	}
	for _, name := range persona.TraitNames() {
		data.Traits = append(data.Traits, promptTrait{Name: name, Intensity: persona.Traits[name]})
	}

	var buf bytes.Buffer
	if err := companionSystemPrompt.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute companion system prompt template")
	}
	return buf.String(), nil
}

func (g *ResponseGenerator) remote(ctx context.Context, bundle *model.ContextBundle, message string, history []model.Turn) (string, error) {
	systemPrompt, err := g.buildSystemPrompt(bundle)
	if err != nil {
		return "", err
	}

	if len(history) > maxPromptTurns {
		history = history[len(history)-maxPromptTurns:]
	}
	turns := make([]model.Turn, 0, len(history)+1)
	for _, t := range history {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		role := types.ChatRoleUser
		if t.Role != types.ChatRoleUser {
			role = types.ChatRoleAssistant
		}
		turns = append(turns, model.Turn{Role: role, Content: content})
	}
	turns = append(turns, model.Turn{Role: types.ChatRoleUser, Content: message})

	resp, err := g.chatModel.Generate(ctx, &model.GenerationRequest{
		SystemPrompt: systemPrompt,
		Turns:        turns,
		Config:       model.DefaultGenerationConfig(),
	})
	if err != nil {
		return "", err
	}
	return resp.PlainText(), nil
}

// fallback answers with the personality engine and records self-disclosed facts
// on the profile.
func (g *ResponseGenerator) fallback(ctx context.Context, userID, message string) string {
	g.metrics.GenerationFallback()

	profile, err := g.repo.Profile().Get(ctx, userID)
	if err != nil {
		logging.From(ctx).Warn("failed to read profile for fallback reply", slog.Any("error", err), slog.String("user_id", userID))
		profile = nil
	}

	if discloses(message) {
		if err := g.recordPersonalInfo(ctx, userID, profile, message); err != nil {
			logging.From(ctx).Warn("failed to record personal info", slog.Any("error", err), slog.String("user_id", userID))
		}
	}

	return g.engine.GenerateReply(message, profile.DisplayName())
}

func discloses(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range selfDisclosurePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (g *ResponseGenerator) recordPersonalInfo(ctx context.Context, userID string, profile *model.Profile, message string) error {
	memory := model.ProfileMemory{
		Type:       types.TagPersonalInfo,
		Content:    "User mentioned: " + message,
		Tags:       []string{types.TagPersonalInfo},
		Importance: personalInfoImportance,
		CreatedAt:  g.now().UTC(),
	}

	if profile == nil {
		if err := g.repo.Profile().Put(ctx, &model.Profile{
			UserID:   userID,
			Memories: []model.ProfileMemory{memory},
		}); err != nil {
			return goerr.Wrap(err, "failed to create profile with personal info", goerr.V(UserIDKey, userID))
		}
		return nil
	}

	if err := g.repo.Profile().AppendMemory(ctx, userID, memory); err != nil {
		return goerr.Wrap(err, "failed to append personal info", goerr.V(UserIDKey, userID))
	}
	return nil
}
