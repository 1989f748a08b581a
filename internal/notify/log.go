package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Log records alerts in the operational log.
type Log struct {
	Logger *logrus.Entry
}

func (l Log) Notify(_ context.Context, alert Alert) error {
	if l.Logger == nil {
		return nil
	}
	l.Logger.WithFields(logrus.Fields{
		"host":    alert.Host,
		"rule":    alert.RuleID,
		"preview": alert.Preview,
	}).Warn("suspicious clipboard content")
	return nil
}
