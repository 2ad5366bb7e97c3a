package entities

// Animation cue vocabulary the avatar frontend has clips for. The reply
// generator is told to pick from this list and anything else collapses to
// DefaultAnimation.
var KnownAnimations = []string{
	"Angry",
	"Crying",
	"Laughing",
	"Idle",
	"Talking_0",
	"Talking_1",
	"Terrified",
}

const (
	// DefaultAnimation is used when the model suggests an unknown cue.
	DefaultAnimation = "Idle"

	// DefaultFacialExpression is applied to every segment of a reply.
	DefaultFacialExpression = "smile"

	// DefaultReplyText stands in when the model's JSON omits the text field.
	DefaultReplyText = "Default response"
)

// GeneratedReply is the parsed output of one reply-generation call.
type GeneratedReply struct {
	Text      string `json:"text"`
	Animation string `json:"animation"`
}

// MouthCue is a single mouth-shape interval in a viseme timeline.
type MouthCue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Value string  `json:"value"`
}

// TimelineMetadata mirrors the header Rhubarb writes alongside the cues.
type TimelineMetadata struct {
	SoundFile string  `json:"soundFile"`
	Duration  float64 `json:"duration"`
}

// VisemeTimeline is an ordered sequence of mouth cues spanning one audio
// asset. Cue start offsets are non-decreasing.
type VisemeTimeline struct {
	Metadata  TimelineMetadata `json:"metadata"`
	MouthCues []MouthCue       `json:"mouthCues"`
}

// MessageSegment is the fully resolved output unit for one text chunk.
type MessageSegment struct {
	Text             string         `json:"text"`
	Audio            string         `json:"audio"` // base64 encoded MP3
	Lipsync          VisemeTimeline `json:"lipsync"`
	FacialExpression string         `json:"facialExpression"`
	Animation        string         `json:"animation"`
}

// ChatResponse is the reply to one user message. Messages is never nil;
// an empty slice means the user sent an empty message.
type ChatResponse struct {
	Messages []MessageSegment `json:"messages"`
}
