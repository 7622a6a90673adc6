package conversation

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zhouzirui/manga-thumb/backend/internal/model/catalog"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
)

type transitionKey struct {
	state chat.State
	kind  chat.InputKind
}

// result is what a transition decided. A non-empty reject keeps the current state.
type result struct {
	next    chat.State
	reply   *chat.Reply
	render  bool
	discard bool
	reject  string
}

type transitionFunc func(c *Collector, s *chat.Session, in chat.Input) result

// transitions is the full state × input-kind table; missing pairs are shape mismatches.
var transitions = map[transitionKey]transitionFunc{
	{chat.StateName, chat.InputText}:           acceptName,
	{chat.StateImage, chat.InputPhoto}:         acceptImage,
	{chat.StateImage, chat.InputDocument}:      acceptImageDocument,
	{chat.StateSynopsis, chat.InputText}:       acceptSynopsis,
	{chat.StatePercentage, chat.InputText}:     acceptPercentage,
	{chat.StateYear, chat.InputText}:           acceptYear,
	{chat.StateAuthor, chat.InputText}:         acceptAuthor,
	{chat.StateTemplate, chat.InputText}:       acceptTemplate,
	{chat.StateColor, chat.InputText}:          acceptColor,
	{chat.StateCustomColor, chat.InputText}:    acceptCustomColor,
	{chat.StateFont, chat.InputText}:           acceptFont,
	{chat.StateCustomFont, chat.InputDocument}: acceptCustomFont,
	{chat.StateBranding, chat.InputText}:       acceptBranding,
	{chat.StateConfirmation, chat.InputText}:   acceptConfirmation,
}

// blank reports text that would leave a required field empty on the thumbnail.
func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func acceptName(_ *Collector, s *chat.Session, in chat.Input) result {
	if blank(in.Text) {
		return result{reject: expectTextText}
	}
	s.Answers.Name = in.Text
	return result{next: chat.StateImage}
}

func acceptImage(_ *Collector, s *chat.Session, in chat.Input) result {
	if len(in.Data) == 0 {
		return result{reject: invalidImageText}
	}
	s.Answers.Image = in.Data
	return result{next: chat.StateSynopsis}
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

// acceptImageDocument takes pictures sent as uncompressed files.
func acceptImageDocument(c *Collector, s *chat.Session, in chat.Input) result {
	if _, ok := imageExtensions[strings.ToLower(filepath.Ext(in.FileName))]; !ok {
		return result{reject: invalidImageText}
	}
	return acceptImage(c, s, in)
}

func acceptSynopsis(_ *Collector, s *chat.Session, in chat.Input) result {
	if blank(in.Text) {
		return result{reject: expectTextText}
	}
	s.Answers.Synopsis = in.Text
	return result{next: chat.StatePercentage}
}

func acceptPercentage(_ *Collector, s *chat.Session, in chat.Input) result {
	percent, err := strconv.Atoi(strings.TrimSpace(in.Text))
	if err != nil || percent < 0 || percent > 100 {
		return result{reject: invalidPercentageText}
	}
	s.Answers.Percentage = &percent
	return result{next: chat.StateYear}
}

func acceptYear(_ *Collector, s *chat.Session, in chat.Input) result {
	year, err := strconv.Atoi(strings.TrimSpace(in.Text))
	if err != nil {
		return result{reject: invalidYearText}
	}
	s.Answers.Year = &year
	return result{next: chat.StateAuthor}
}

func acceptAuthor(_ *Collector, s *chat.Session, in chat.Input) result {
	if blank(in.Text) {
		return result{reject: expectTextText}
	}
	s.Answers.Author = in.Text
	return result{next: chat.StateTemplate}
}

func acceptTemplate(c *Collector, s *chat.Session, in chat.Input) result {
	option, ok := c.catalog.Find(catalog.KindTemplate, in.Text)
	if !ok {
		return result{reject: chooseOptionText}
	}
	s.Answers.Template = option.Value
	return result{next: chat.StateColor}
}

func acceptColor(c *Collector, s *chat.Session, in chat.Input) result {
	option, ok := c.catalog.Find(catalog.KindColor, in.Text)
	if !ok {
		return result{reject: chooseOptionText}
	}

	switch option.Value {
	case catalog.ValueCustom:
		return result{next: chat.StateCustomColor}
	case catalog.ValueRandom:
		s.Answers.Color = c.randomColor()
	default:
		s.Answers.Color = option.Value
	}
	return result{next: chat.StateFont}
}

// acceptCustomColor stores the input verbatim; the renderer decides whether it is usable.
func acceptCustomColor(_ *Collector, s *chat.Session, in chat.Input) result {
	if blank(in.Text) {
		return result{reject: askCustomColorText}
	}
	s.Answers.Color = in.Text
	return result{next: chat.StateFont}
}

func acceptFont(c *Collector, s *chat.Session, in chat.Input) result {
	option, ok := c.catalog.Find(catalog.KindFont, in.Text)
	if !ok {
		return result{reject: chooseOptionText}
	}
	if option.Value == catalog.ValueCustom {
		return result{next: chat.StateCustomFont}
	}
	s.Answers.Font = option.Value
	return result{next: chat.StateBranding}
}

func acceptCustomFont(c *Collector, s *chat.Session, in chat.Input) result {
	if len(in.Data) == 0 || c.fonts == nil {
		return result{reject: invalidFontText}
	}

	ext := strings.ToLower(filepath.Ext(in.FileName))
	if ext != ".otf" {
		ext = ".ttf"
	}

	path, err := c.fonts.Save("font", ext, in.Data)
	if err != nil {
		return result{reject: fontSaveFailedText}
	}
	s.Answers.Font = ""
	s.Answers.CustomFontPath = path
	return result{next: chat.StateBranding}
}

func acceptBranding(_ *Collector, s *chat.Session, in chat.Input) result {
	if blank(in.Text) {
		return result{reject: expectTextText}
	}
	s.Answers.Branding = in.Text
	return result{next: chat.StateConfirmation}
}

func acceptConfirmation(_ *Collector, s *chat.Session, in chat.Input) result {
	if strings.EqualFold(in.Text, "yes") {
		return result{next: chat.StateDone, render: true, reply: &chat.Reply{Text: GeneratingText, RemoveKeyboard: true}}
	}
	return result{next: chat.StateDone, discard: true, reply: &chat.Reply{Text: CancelledText, RemoveKeyboard: true}}
}
