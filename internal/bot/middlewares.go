package bot

import (
	"gopkg.in/telebot.v4"
)

// track counts the command and logs who used it.
func (b *Bot) track(command string) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(ctx telebot.Context) error {
			b.metrics.BotCommands.WithLabelValues(command).Inc()

			if sender := ctx.Sender(); sender != nil {
				b.log.Info("Command received", "command", command, "user", sender.ID, "username", sender.Username)
			}

			return next(ctx)
		}
	}
}
