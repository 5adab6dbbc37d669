package metric

import (
	"context"
	"time"

	"eventdesk/src-server/model"
	"eventdesk/src-server/utils"
)

func database(as *utils.AppState) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Event)(nil)).
		Where("id = ?", 0).
		Exists(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
