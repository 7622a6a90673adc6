package chat

// InputKind 描述一条用户输入的形态。
type InputKind string

const (
	InputText     InputKind = "text"
	InputPhoto    InputKind = "photo"
	InputDocument InputKind = "document"
	InputCommand  InputKind = "command"
	// InputOther covers stickers, voice notes and anything else no question accepts.
	InputOther InputKind = "other"
)

// 机器人识别的命令。
const (
	CommandStart  = "start"
	CommandCancel = "cancel"
)

// Input 是传输层转换后的一条用户输入。
type Input struct {
	Kind     InputKind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	Command  string    `json:"command,omitempty"`
	Data     []byte    `json:"-"`
	FileName string    `json:"fileName,omitempty"`
}

// Reply 是回给用户的一条消息。ImagePath 非空时为图片消息。
type Reply struct {
	Text           string   `json:"text,omitempty"`
	Options        []string `json:"options,omitempty"`
	RemoveKeyboard bool     `json:"removeKeyboard,omitempty"`
	ImagePath      string   `json:"-"`
	Caption        string   `json:"caption,omitempty"`
}

// TextInput builds a plain text input.
func TextInput(text string) Input {
	return Input{Kind: InputText, Text: text}
}

// CommandInput builds a command input such as "start".
func CommandInput(command string) Input {
	return Input{Kind: InputCommand, Command: command}
}
