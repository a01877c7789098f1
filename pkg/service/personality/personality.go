package personality

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
)

// Rand is the random source used for phrasing and style selection.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// globalRand uses the goroutine-safe top-level functions of math/rand/v2
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// Engine restyles messages in the companion's voice. It holds no per-user state.
type Engine struct {
	rand    Rand
	now     func() time.Time
	persona *model.Persona
}

// Option is a functional option for Engine
type Option func(*Engine)

// WithRand replaces the random source
func WithRand(r Rand) Option {
	return func(e *Engine) {
		e.rand = r
	}
}

// WithClock replaces the clock used for time-of-day decisions
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithPersona sets the persona description
func WithPersona(p *model.Persona) Option {
	return func(e *Engine) {
		e.persona = p
	}
}

// New creates a new Engine
func New(opts ...Option) *Engine {
	e := &Engine{
		rand:    globalRand{},
		now:     time.Now,
		persona: model.DefaultPersona(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Persona returns the persona the engine speaks for
func (e *Engine) Persona() *model.Persona {
	return e.persona
}

func (e *Engine) chance(p float64) bool {
	return e.rand.Float64() < p
}

func (e *Engine) pick(items []string) string {
	return items[e.rand.IntN(len(items))]
}

// PickStyle samples a style from the weighted style table. The draw is compared
// against cumulative fractions, so a draw of exactly 0.4 selects motivational.
func (e *Engine) PickStyle() types.Style {
	var total int
	for _, ws := range styleTable {
		total += ws.weight
	}

	x := e.rand.Float64()
	var cumulative int
	for _, ws := range styleTable {
		cumulative += ws.weight
		if x < float64(cumulative)/float64(total) {
			return ws.style
		}
	}
	return styleTable[len(styleTable)-1].style
}

// Style applies the named tone to message. Unknown styles are treated as supportive.
// A conversational filler is prepended with 30% probability.
func (e *Engine) Style(style types.Style, message, userName string) string {
	var styled string
	switch style {
	case types.StyleMotivational:
		styled = e.motivational(message, userName)
	case types.StylePlayful:
		styled = e.playful(message, userName)
	case types.StyleFirm:
		styled = e.firm(message, userName)
	default:
		styled = e.supportive(message, userName)
	}

	if e.chance(0.3) {
		filler := e.pick(fillers)
		if e.chance(0.5) {
			styled = filler + ", " + lowerFirst(styled)
		} else {
			styled = filler + "... " + styled
		}
	}
	return styled
}

func (e *Engine) supportive(message, name string) string {
	suffix := "!"
	if name != "" {
		suffix = ", " + name + "!"
	}
	phrases := []string{
		"I believe in you" + suffix,
		"You've got this" + suffix,
		"I'm here for you, every step of the way.",
		"Remember how far you've come" + suffix,
		"Sending you good vibes! ✨",
		"I'm in your corner! 🥊",
	}

	phrase := e.pick(phrases)
	if e.chance(0.3) {
		return message + " " + phrase + e.pick(supportiveFollowUps)
	}
	return message + " " + phrase
}

func (e *Engine) motivational(message, name string) string {
	var phrase string
	switch e.rand.IntN(5) {
	case 0:
		phrase = "Let's turn those dreams into plans"
		if e.chance(0.3) {
			phrase += " like the rockstar you are"
		}
		phrase += "!"
	case 1:
		phrase = "Every small step counts! Rome wasn't built in a day, right? 🏛️"
	case 2:
		phrase = "You're capable of amazing things"
		if e.chance(0.5) {
			phrase += " when you put your mind to it"
		}
		phrase += "!"
	case 3:
		phrase = "Success is built one day at a time, and you're doing great! 🚀"
	default:
		phrase = "The only limit is the one you set for yourself"
		if name != "" && e.chance(0.4) {
			phrase += " " + name
		}
		phrase += "!"
	}

	if e.chance(0.4) {
		return message + " " + phrase + " " + e.pick(motivationalEmphasis)
	}
	return message + " " + phrase
}

func (e *Engine) firm(message, name string) string {
	opening := e.pick(firmOpenings)
	closing := e.pick(firmClosings)
	if name != "" && e.chance(0.3) {
		closing = " " + name + ", " + strings.TrimLeft(closing, " ")
	}
	return opening + message + closing
}

func (e *Engine) playful(message, name string) string {
	for _, pe := range playfulPunctuation {
		replacement := e.pick(pe.replacements)
		if strings.Contains(message, pe.punct) && e.chance(0.3) {
			parts := strings.Split(message, pe.punct)
			last := len(parts) - 1
			message = strings.Join(parts[:last], replacement) + pe.punct + parts[last]
		}
	}

	if e.chance(0.2) {
		message = message + " " + e.pick(playfulAsides)
	}

	if name != "" && e.chance(0.3) {
		nickname := strings.ReplaceAll(e.pick(nicknamePatterns), "{name}", name)
		message = strings.ReplaceAll(message, name, nickname)
	}
	return message
}

func greetingBucketOf(hour int) greetingBucket {
	switch {
	case hour >= 5 && hour < 12:
		return bucketMorning
	case hour >= 12 && hour < 17:
		return bucketAfternoon
	case hour >= 17 && hour < 22:
		return bucketEvening
	default:
		return bucketLateNight
	}
}

// TimeBasedGreeting returns a greeting for the current UTC time of day. The name
// is inserted before the first terminal punctuation with 70% probability and a
// follow-up question is appended with 30% probability.
func (e *Engine) TimeBasedGreeting(userName string) string {
	greeting := e.pick(greetings[greetingBucketOf(e.now().UTC().Hour())])

	if userName != "" && e.chance(0.7) {
		greeting = insertName(greeting, userName)
	}
	if e.chance(0.3) {
		greeting += e.pick(greetingFollowUps)
	}
	return greeting
}

// Encouragement returns a phrase from the encouragement pool, optionally framed by
// a context description.
func (e *Engine) Encouragement(context string) string {
	encouragement := e.pick(encouragements)

	if context != "" {
		if e.chance(0.5) {
			encouragement = fmt.Sprintf("About %s, %s", strings.ToLower(context), strings.ToLower(encouragement))
		} else {
			encouragement = fmt.Sprintf("%s About %s, remember...", encouragement, strings.ToLower(context))
		}
	}

	if e.chance(0.3) {
		emojis := slices.Concat(happyEmojis, excitedEmojis)
		encouragement += " " + e.pick(emojis)
	}
	return encouragement
}

// UrgentTasksNotice returns a firm notice about tasks whose due date has passed
// and which are not completed. At most three descriptions are listed, while the
// count covers all of them. ok is false when nothing is overdue.
func (e *Engine) UrgentTasksNotice(tasks []model.OverdueTask) (notice string, ok bool) {
	now := e.now()
	var overdue []model.OverdueTask
	for _, t := range tasks {
		if t.Completed || t.DueDate.IsZero() || !t.DueDate.Before(now) {
			continue
		}
		overdue = append(overdue, t)
	}
	if len(overdue) == 0 {
		return "", false
	}

	lines := make([]string, 0, 3)
	for _, t := range overdue[:min(3, len(overdue))] {
		lines = append(lines, "- "+t.Description)
	}

	plural := ""
	if len(overdue) > 1 {
		plural = "s"
	}
	msg := fmt.Sprintf("⚠️ You have %d overdue task%s:\n%s\n\nI know you can do this! Which one should we tackle first?",
		len(overdue), plural, strings.Join(lines, "\n"))
	return e.Style(types.StyleFirm, msg, ""), true
}

// MorningGreeting returns a personalized morning check-in message.
func (e *Engine) MorningGreeting(userName string) string {
	if userName == "" {
		userName = "friend"
	}
	return strings.ReplaceAll(e.pick(morningGreetings), "{name}", userName)
}

// EveningPrompt returns a reflective evening question.
func (e *Engine) EveningPrompt() string {
	return e.pick(eveningPrompts)
}

// GenerateReply classifies message by keywords, produces a canned base reply, and
// restyles it with a randomly drawn style. A follow-up question is appended with
// 40% probability.
func (e *Engine) GenerateReply(message, userName string) string {
	style := e.PickStyle()
	normalized := strings.ToLower(strings.TrimSpace(message))

	var base string
	switch {
	case normalized == "" || slices.Contains(greetingWords, normalized):
		base = e.TimeBasedGreeting(userName)
	case strings.Contains(normalized, "?"):
		base = e.questionReply(normalized)
	case containsAny(normalized, workWords):
		base = e.pick(workReplies)
	case containsAny(normalized, meetWords):
		name := userName
		if name == "" {
			name = "there"
		}
		base = strings.ReplaceAll(e.pick(meetReplies), "{name}", name)
	default:
		base = e.statementReply(normalized, userName)
	}

	reply := e.Style(style, base, userName)
	if e.chance(0.4) {
		reply += e.pick(replyFollowUps)
	}
	return reply
}

func (e *Engine) questionReply(question string) string {
	switch {
	case containsAny(question, howAreYouWords):
		return e.pick(howAreYouReplies)
	case containsAny(question, whWords):
		return e.pick(whReplies)
	case containsAny(question, requestWords):
		return e.pick(requestReplies)
	default:
		return e.pick(questionReplies)
	}
}

func (e *Engine) statementReply(statement, userName string) string {
	switch {
	case containsAny(statement, feelingWords):
		reply := e.pick(feelingReplies)
		if userName != "" && strings.HasPrefix(reply, "I hear you.") {
			reply = "I hear you, " + userName + "." + strings.TrimPrefix(reply, "I hear you.")
		}
		return reply
	case containsAny(statement, needWords):
		return e.pick(needReplies)
	case containsAny(statement, opinionWords):
		return e.pick(opinionReplies)
	default:
		return e.pick(genericReplies)
	}
}

// insertName puts ", name" before the first sentence-terminal punctuation, or
// appends it when there is none.
func insertName(s, name string) string {
	idx := strings.IndexAny(s, "!?.")
	if idx < 0 {
		return s + ", " + name
	}
	return s[:idx] + ", " + name + s[idx:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
