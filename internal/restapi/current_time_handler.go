package restapi

import (
	"net/http"
	"time"

	"journeyplanner.org/internal/models"
)

type currentTimeEntry struct {
	Time         int64  `json:"time"`
	ReadableTime string `json:"readableTime"`
	ServiceDate  string `json:"serviceDate"`
}

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	now := api.Clock.Now().In(api.Location)
	api.sendResponse(w, r, models.NewEntryResponse(currentTimeEntry{
		Time:         now.UnixMilli(),
		ReadableTime: now.Format(time.RFC3339),
		ServiceDate:  api.ServiceDate().Format(time.DateOnly),
	}, api.Clock))
}
