package grpc

import (
	"math"

	"github.com/godilite/review-server/internal/service"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func sessionIDArg(req *structpb.Struct) (string, error) {
	id := req.GetFields()["session_id"].GetStringValue()
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "session_id is required")
	}
	return id, nil
}

func ratingArg(req *structpb.Struct) (int, error) {
	v, ok := req.GetFields()["rating"]
	if !ok {
		return 0, status.Error(codes.InvalidArgument, "rating is required")
	}
	if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
		return 0, status.Error(codes.InvalidArgument, "rating must be a number")
	}
	n := v.GetNumberValue()
	if n != math.Trunc(n) {
		return 0, status.Error(codes.InvalidArgument, "rating must be a whole number")
	}
	return int(n), nil
}

// stringArg returns the field and whether the caller sent it at all.
func stringArg(req *structpb.Struct, key string) (string, bool) {
	v, ok := req.GetFields()[key]
	if !ok {
		return "", false
	}
	return v.GetStringValue(), true
}

func summaryToMap(a service.AggregateState) map[string]any {
	stars := make([]any, 0, len(a.Stars))
	for _, s := range a.Stars {
		stars = append(stars, map[string]any{
			"star":    s.Star,
			"count":   s.Count,
			"percent": s.Percent,
		})
	}

	reviews := make([]any, 0, len(a.Reviews))
	for _, r := range a.Reviews {
		reviews = append(reviews, map[string]any{
			"id":        r.ID,
			"name":      r.Name,
			"rating":    r.Rating,
			"text":      r.Text,
			"date":      r.Date,
			"timestamp": r.Timestamp,
		})
	}

	return map[string]any{
		"average_rating": a.AverageRating,
		"total":          a.Total,
		"stars":          stars,
		"reviews":        reviews,
	}
}

func summaryToStruct(a service.AggregateState) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(summaryToMap(a))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode summary: %v", err)
	}
	return out, nil
}

func viewToStruct(id string, v service.View) (*structpb.Struct, error) {
	lastErr := ""
	if v.LastError != nil {
		lastErr = v.LastError.Error()
	}

	out, err := structpb.NewStruct(map[string]any{
		"session_id":     id,
		"current_rating": v.Input.CurrentRating,
		"display_rating": v.Input.DisplayRating(),
		"rating_label":   service.RatingLabel(v.Input.DisplayRating()),
		"name":           v.Input.Name,
		"text":           v.Input.Text,
		"submittable":    v.Submittable,
		"submitting":     v.Input.Submitting,
		"notice":         v.Notice,
		"last_error":     lastErr,
		"summary":        summaryToMap(v.Aggregate),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode session state: %v", err)
	}
	return out, nil
}
