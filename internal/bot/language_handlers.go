package bot

import (
	"gopkg.in/telebot.v4"
)

// languageHandler presents the user with a menu to choose their preferred language.
func (b *Bot) languageHandler(ctx telebot.Context) error {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data(b.t(ctx, "language.button.english"), btnLanguageEnglish.Unique)),
		menu.Row(menu.Data(b.t(ctx, "language.button.ukrainian"), btnLanguageUkrainian.Unique)),
	)

	return ctx.Send(b.t(ctx, "language.select"), menu)
}

// languageChangeHandler stores the chosen language and confirms it in that language.
func (b *Bot) languageChangeHandler(ctx telebot.Context) error {
	var langCode string
	switch ctx.Callback().Unique {
	case btnLanguageEnglish.Unique:
		langCode = "en"
	case btnLanguageUkrainian.Unique:
		langCode = "uk"
	default:
		b.log.Error("Unknown language callback", "data", ctx.Callback().Unique)
		return ctx.Respond(&telebot.CallbackResponse{Text: b.t(ctx, "language.unknown")})
	}

	userID := ctx.Sender().ID
	b.preferences.SetLanguage(userID, langCode)
	b.log.Info("User changed language", "userID", userID, "language", langCode)

	_ = ctx.Respond(&telebot.CallbackResponse{Text: "✅"})
	return ctx.Send(b.t(ctx, "language.changed"))
}
