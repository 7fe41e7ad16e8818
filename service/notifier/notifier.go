package notifier

import (
	"context"

	"lever/core"
	"lever/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
	"github.com/yiplee/structs"
)

type webhookNotifier struct {
	cfg *core.Notifier
}

// New new notifier
//
// With an endpoint configured events are POSTed to the sink; without one
// they are only logged, which is enough for a single node setup.
func New(cfg *core.Notifier) core.INotifier {
	return &webhookNotifier{cfg: cfg}
}

func (n *webhookNotifier) Notify(ctx context.Context, event *core.Event) error {
	log := logger.FromContext(ctx).WithField("event_id", event.ID)

	if n.cfg.EndPoint == "" {
		log.Infoln("event", event.Action, event.AssetID, event.Amount)
		return nil
	}

	resp, err := resthttp.Request(ctx).
		SetBody(structs.Map(event)).
		Post(n.cfg.EndPoint)
	if err != nil {
		return err
	}

	return resthttp.ParseResponse(resp, nil)
}
