package logging

import (
	"github.com/getsentry/sentry-go"
	sentrylogrus "github.com/getsentry/sentry-go/logrus"
	"github.com/sirupsen/logrus"
)

var sentryLevels = []logrus.Level{
	logrus.PanicLevel,
	logrus.FatalLevel,
	logrus.ErrorLevel,
}

// newSentryHook forwards error+ log entries to sentry through the given client;
// with the global client, sentry.Flush on shutdown also covers the log events.
func newSentryHook(client *sentry.Client, serverName string) *sentrylogrus.Hook {
	hook := sentrylogrus.NewFromClient(sentryLevels, client)
	hook.AddTags(map[string]string{
		"service": serverName,
	})
	return hook
}
