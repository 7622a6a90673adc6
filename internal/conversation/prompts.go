package conversation

import (
	"github.com/zhouzirui/manga-thumb/backend/internal/model/catalog"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/thumbnail"
)

const (
	welcomeText = "🎌 Welcome to Manga Thumbnail Generator! 🎌\n\n" +
		"I'll help you create professional manga thumbnails.\n" +
		"Let's start with the manga name:"

	askImageText       = "Great! Now please send me the manga profile picture (send as image):"
	askSynopsisText    = "Perfect! Now please send the manga synopsis:"
	askPercentageText  = "Got it! What percentage score would you like to display? (e.g., 86):"
	askYearText        = "What year was the manga published? (e.g., 2023):"
	askAuthorText      = "Who is the author of the manga?"
	askTemplateText    = "Great! Now choose a template style:"
	askColorText       = "Now choose a color scheme:"
	askCustomColorText = "Please enter your custom color (hex code like #FF5733 or name like 'skyblue'):"
	askFontText        = "Now choose a text style:"
	askCustomFontText  = "Please send your custom font file (.ttf or .otf format):"
	askBrandingText    = "What branding text would you like to display? (e.g., 'waalords'):"

	invalidPercentageText = "Please enter a valid percentage between 0 and 100:"
	invalidYearText       = "Please enter a valid year:"
	invalidImageText      = "Please send the manga profile picture as an image:"
	invalidFontText       = "Please send a font file (ttf or otf format):"
	fontSaveFailedText    = "Sorry, I couldn't store that font. Please send it again:"
	expectTextText        = "Please answer with a text message:"
	chooseOptionText      = "Please pick one of the options on the keyboard:"

	// GeneratingText is sent right before rendering starts.
	GeneratingText = "Generating your manga thumbnail... Please wait."
	// CancelledText is sent whenever a session is discarded without rendering.
	CancelledText = "Thumbnail generation cancelled."
	// NoSessionText answers input that arrives without an active session.
	NoSessionText = "Send /start to create a new manga thumbnail."
)

// Welcome returns the greeting that opens a new session.
func Welcome() chat.Reply {
	return chat.Reply{Text: welcomeText, RemoveKeyboard: true}
}

// Prompt returns the question asked when entering state.
func (c *Collector) Prompt(state chat.State, answers thumbnail.Answers) chat.Reply {
	switch state {
	case chat.StateName:
		return Welcome()
	case chat.StateImage:
		return chat.Reply{Text: askImageText}
	case chat.StateSynopsis:
		return chat.Reply{Text: askSynopsisText}
	case chat.StatePercentage:
		return chat.Reply{Text: askPercentageText}
	case chat.StateYear:
		return chat.Reply{Text: askYearText}
	case chat.StateAuthor:
		return chat.Reply{Text: askAuthorText}
	case chat.StateTemplate:
		return chat.Reply{Text: askTemplateText, Options: c.catalog.Labels(catalog.KindTemplate)}
	case chat.StateColor:
		return chat.Reply{Text: askColorText, Options: c.catalog.Labels(catalog.KindColor)}
	case chat.StateCustomColor:
		return chat.Reply{Text: askCustomColorText, RemoveKeyboard: true}
	case chat.StateFont:
		return chat.Reply{Text: askFontText, Options: c.catalog.Labels(catalog.KindFont)}
	case chat.StateCustomFont:
		return chat.Reply{Text: askCustomFontText, RemoveKeyboard: true}
	case chat.StateBranding:
		return chat.Reply{Text: askBrandingText, RemoveKeyboard: true}
	case chat.StateConfirmation:
		return chat.Reply{Text: answers.Summary()}
	default:
		return chat.Reply{}
	}
}
