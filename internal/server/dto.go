package server

import (
	"github.com/google/uuid"

	"github.com/jwulff/glucose-go/internal/glucose"
	"github.com/jwulff/glucose-go/internal/storage"
)

type glucoseRequest struct {
	T    int64   `json:"t"`
	Mmol float64 `json:"mmol" binding:"required,gt=0"`
}

type latestGlucoseResponse struct {
	T     int64   `json:"t"`
	Mmol  float64 `json:"mmol"`
	Mgdl  int     `json:"mgdl"`
	Range string  `json:"range"`
	Stale bool    `json:"stale"`
}

type foodRequest struct {
	Name          string  `json:"name" binding:"required"`
	Carbs         float64 `json:"carbs" binding:"gte=0"`
	Fats          float64 `json:"fats" binding:"gte=0"`
	GlycemicIndex int     `json:"glycemicIndex" binding:"gte=0,lte=100"`
}

type foodResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Carbs         float64 `json:"carbs"`
	Fats          float64 `json:"fats"`
	GlycemicIndex int     `json:"glycemicIndex"`
}

func toFoodResponse(f glucose.Food) foodResponse {
	return foodResponse{
		ID:            f.ID.String(),
		Name:          f.Name,
		Carbs:         f.Carbs,
		Fats:          f.Fats,
		GlycemicIndex: f.GlycemicIndex,
	}
}

type foodAmountRequest struct {
	FoodID   string `json:"foodId" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type foodEventRequest struct {
	At      int64               `json:"at"`
	Amounts []foodAmountRequest `json:"amounts" binding:"required,min=1,dive"`
}

type insulinEventRequest struct {
	At    int64 `json:"at"`
	Units int   `json:"units" binding:"required,gt=0"`
}

type activityEventRequest struct {
	At          int64  `json:"at"`
	DurationMin int    `json:"durationMin" binding:"required,gt=0"`
	Intensity   string `json:"intensity" binding:"required,oneof=LOW MED HIGH"`
}

type eventCreatedResponse struct {
	ID string `json:"id"`
	At int64  `json:"at"`
}

type foodAmountResponse struct {
	FoodID   string `json:"foodId"`
	Quantity int    `json:"quantity"`
}

type foodEventResponse struct {
	ID      string               `json:"id"`
	At      int64                `json:"at"`
	Amounts []foodAmountResponse `json:"amounts"`
}

type insulinEventResponse struct {
	ID    string `json:"id"`
	At    int64  `json:"at"`
	Units int    `json:"units"`
}

type activityEventResponse struct {
	ID          string `json:"id"`
	At          int64  `json:"at"`
	DurationMin int    `json:"durationMin"`
	Intensity   string `json:"intensity"`
}

type eventLogResponse struct {
	Food     []foodEventResponse     `json:"food"`
	Insulin  []insulinEventResponse  `json:"insulin"`
	Activity []activityEventResponse `json:"activity"`
}

func toEventLogResponse(log *storage.EventLog) eventLogResponse {
	out := eventLogResponse{
		Food:     make([]foodEventResponse, 0, len(log.Food)),
		Insulin:  make([]insulinEventResponse, 0, len(log.Insulin)),
		Activity: make([]activityEventResponse, 0, len(log.Activity)),
	}
	for _, e := range log.Food {
		amounts := make([]foodAmountResponse, 0, len(e.Amounts))
		for _, a := range e.Amounts {
			amounts = append(amounts, foodAmountResponse{FoodID: a.FoodID.String(), Quantity: a.Quantity})
		}
		out.Food = append(out.Food, foodEventResponse{ID: e.ID.String(), At: e.Time, Amounts: amounts})
	}
	for _, e := range log.Insulin {
		out.Insulin = append(out.Insulin, insulinEventResponse{ID: e.ID.String(), At: e.Time, Units: e.Units})
	}
	for _, e := range log.Activity {
		out.Activity = append(out.Activity, activityEventResponse{
			ID:          e.ID.String(),
			At:          e.Time,
			DurationMin: e.DurationMin,
			Intensity:   string(e.Intensity),
		})
	}
	return out
}

func (r foodEventRequest) toEvent(at int64) glucose.FoodEvent {
	amounts := make([]glucose.FoodAmount, 0, len(r.Amounts))
	for _, a := range r.Amounts {
		// binding tag already checked the uuid format
		id, _ := uuid.Parse(a.FoodID)
		amounts = append(amounts, glucose.FoodAmount{FoodID: id, Quantity: a.Quantity})
	}
	return glucose.FoodEvent{ID: uuid.New(), Time: at, Amounts: amounts}
}
