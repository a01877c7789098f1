package personality

import "github.com/secmon-lab/lumi/pkg/domain/types"

type weightedStyle struct {
	style  types.Style
	weight int
}

// styleTable is the discrete probability table used by PickStyle. Weights are
// integer percentages.
var styleTable = []weightedStyle{
	{types.StyleSupportive, 40},
	{types.StyleMotivational, 30},
	{types.StylePlayful, 20},
	{types.StyleFirm, 10},
}

type greetingBucket string

const (
	bucketMorning   greetingBucket = "morning"
	bucketAfternoon greetingBucket = "afternoon"
	bucketEvening   greetingBucket = "evening"
	bucketLateNight greetingBucket = "late_night"
)

var greetings = map[greetingBucket][]string{
	bucketMorning: {
		"Mornin' sunshine! ☀️ Ready to make today amazing?",
		"Rise and shine! What's cookin', good lookin'? 😄",
		"Top of the morning to you! What's the game plan for today?",
		"Hey early bird! Catch any worms yet? 🐦",
	},
	bucketAfternoon: {
		"Afternoon! How's your day treating you so far?",
		"Hey there! How's it going? Need a quick break? ☕",
		"Afternoon vibes! What's shakin', bacon? 🥓",
		"Hope you're having a fab day! What's new?",
	},
	bucketEvening: {
		"Evening! How was your day? Spill the tea! ☕",
		"Hey you! How'd today treat you? 🌆",
		"Evening, night owl! What's the haps?",
		"How's your evening shaping up? Need to vent or celebrate? 🎉",
	},
	bucketLateNight: {
		"Still up? Don't make me turn this app into a bedtime story generator! 😴",
		"Past your bedtime, isn't it? Or are we having a late-night genius moment? 🌙",
		"Late night crew represent! What's keeping you up?",
		"You know what they say about burning the midnight oil... it leads to great conversations!",
	},
}

var greetingFollowUps = []string{
	" What's on your mind today?",
	" How are you feeling?",
	" What's new with you?",
	" What's the plan for today?",
}

var encouragements = []string{
	"You're doing better than you think! Progress, not perfection, right?",
	"Remember how far you've come, not just how far you have to go.",
	"One step at a time - you've got this! 💪",
	"Small progress is still progress. Keep going! 🚀",
	"Every expert was once a beginner. You're on your way! 🌟",
	"The fact that you're trying says a lot about you. Keep at it! 😊",
	"You're stronger than you think. I believe in you! ✨",
}

var (
	happyEmojis   = []string{"😊", "😄", "😃", "😁", "😆", "🤗"}
	excitedEmojis = []string{"🤩", "🎉", "✨", "😆", "🤯"}
)

var supportiveFollowUps = []string{
	" How does that sound?",
	" What do you think?",
	" You with me?",
	" Cool?",
}

var motivationalEmphasis = []string{"💪", "✨", "🔥", "🚀", "🌟"}

var firmOpenings = []string{
	"I need to be real with you: ",
	"Let's be honest here: ",
	"I'm saying this because I care: ",
	"Time for some tough love: ",
}

var firmClosings = []string{
	" I know you can handle this.",
	" You're stronger than you think.",
	" I believe in your ability to do this.",
	" Let's tackle this together.",
}

type punctuationEmoji struct {
	punct        string
	replacements []string
}

var playfulPunctuation = []punctuationEmoji{
	{".", []string{"! 😊", "! 🎉", ". 😄", ". 😊", "."}},
	{"?", []string{"? 🤔", "? 🧐", "?"}},
}

var playfulAsides = []string{
	"Just saying!",
	"No pressure though!",
	"Easy peasy!",
	"Piece of cake!",
	"You know what I mean?",
	"Right?",
	"Am I right or am I right?",
	"Boom! 💥",
}

// nicknamePatterns substitute {name} with the user's name
var nicknamePatterns = []string{
	"{name}-inator",
	"Captain {name}",
	"{name} the Great",
	"Super {name}",
	"{name} Mc{name}face",
}

var fillers = []string{
	"You know",
	"Well",
	"So",
	"I mean",
	"Honestly",
	"Actually",
}

var replyFollowUps = []string{
	" What do you think?",
	" How does that sound?",
	" What's on your mind about that?",
	" What else is going on?",
	" How's everything else?",
}

var (
	greetingWords = []string{"hi", "hello", "hey"}
	workWords     = []string{"work", "task", "todo", "do today"}
	meetWords     = []string{"meet", "see", "hang out", "get together"}
	feelingWords  = []string{"i feel", "i'm feeling", "i am feeling"}
	needWords     = []string{"i need", "i want", "i would like"}
	opinionWords  = []string{"i think", "i believe", "in my opinion"}

	howAreYouWords = []string{"how are you", "how do you do", "how's it going"}
	whWords        = []string{"what", "when", "where", "why", "how", "who", "which"}
	requestWords   = []string{"can you", "could you", "would you"}
)

var workReplies = []string{
	"Work stuff, huh? Let's tackle this one step at a time. What's the most important thing on your plate right now?",
	"I'm here to help with your tasks! What would you like to focus on first?",
	"Let's make today productive! What's one thing you'd like to accomplish?",
	"Work can be overwhelming sometimes. Let's break it down - what's your top priority?",
}

// meetReplies substitute {name} with the user's name, or "there" when unknown
var meetReplies = []string{
	"That sounds great, {name}! Meeting new people can be really exciting. What kind of person are you hoping to connect with?",
	"I'd love to help you meet someone, {name}! What are some of your interests? That might help find common ground.",
	"Meeting new people is always an adventure! What kind of activities do you enjoy? That could be a great way to connect with others.",
	"That's a wonderful idea! Meeting new people can lead to amazing opportunities. What's drawing you to want to connect with someone new?",
}

var (
	howAreYouReplies = []string{
		"I'm doing well, thanks for asking! How about you?",
		"I'm great! Just here to help you out. What's new with you?",
		"Doing good! What's on your mind today?",
	}
	whReplies = []string{
		"That's an interesting question. What's making you ask?",
		"I'd love to help with that. Could you tell me more about what you're thinking?",
		"Hmm, that makes me curious too. What are your thoughts on it?",
	}
	requestReplies = []string{
		"I'll do my best to help with that. What specifically do you need?",
		"I can certainly try! Tell me more about what you're looking for.",
		"I'd be happy to help. Could you give me a bit more detail?",
	}
	questionReplies = []string{
		"That's a great question! What's your take on it?",
		"Hmm, interesting point. What made you think of that?",
		"I've been wondering about that too. What are your thoughts?",
	}
)

var (
	feelingReplies = []string{
		"I hear you. What's been on your mind?",
		"That's completely valid. Want to talk more about it?",
		"I understand. Sometimes putting feelings into words helps. What else is going on?",
	}
	needReplies = []string{
		"I'm listening. Tell me more about what you're looking for.",
		"I hear you. What would be most helpful right now?",
		"I understand. What's the best way I can support you with that?",
	}
	opinionReplies = []string{
		"That's an interesting perspective. What led you to that thought?",
		"I see where you're coming from. What else do you think about that?",
		"That's a thoughtful point. How did you arrive at that conclusion?",
	}
	genericReplies = []string{
		"I see. What else is happening with you?",
		"Got it. What's new on your end?",
		"I understand. What's been keeping you busy lately?",
		"Makes sense. How's everything else going?",
	}
)

// morningGreetings substitute {name} with the user's name
var morningGreetings = []string{
	"Good morning, {name}! Ready to make today amazing?",
	"Rise and shine, {name}! What's one thing you want to accomplish today?",
	"Morning! Let's make today count, {name}. What's on your mind?",
}

var eveningPrompts = []string{
	"How was your day? What went well?",
	"What's one thing you're grateful for today?",
	"What's one thing you'd like to do differently tomorrow?",
}
