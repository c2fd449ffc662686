package simulation

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The FlockActor speaks protobuf well-known types:
//
//	*durationpb.Duration   advance one frame (the value is the frame time)
//	*wrapperspb.UInt32Value spawn that many agents
//	*wrapperspb.BoolValue  show or hide trails
//	*structpb.Struct       set named parameters, e.g. {"separationWeight": 2}
//	*structpb.ListValue    player input [turn, thrust]
//	*emptypb.Empty         ask for the population size (UInt32Value reply)

// NewTick builds the frame message.
func NewTick(dt time.Duration) *durationpb.Duration {
	return durationpb.New(dt)
}

// NewSpawn asks for n more agents.
func NewSpawn(n int) *wrapperspb.UInt32Value {
	return wrapperspb.UInt32(uint32(max(n, 0)))
}

// NewTrails sets trail visibility.
func NewTrails(show bool) *wrapperspb.BoolValue {
	return wrapperspb.Bool(show)
}

// NewParamPatch builds a parameter update from name/value pairs.
func NewParamPatch(values map[string]float64) (*structpb.Struct, error) {
	fields := make(map[string]any, len(values))
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("parameter %s: not a finite number", k)
		}
		fields[k] = v
	}
	return structpb.NewStruct(fields)
}

// NewPlayerInput builds the pilot command for the next frame.
func NewPlayerInput(turn, thrust float64) *structpb.ListValue {
	return &structpb.ListValue{Values: []*structpb.Value{
		structpb.NewNumberValue(turn),
		structpb.NewNumberValue(thrust),
	}}
}

// NewCountQuery asks the population size.
func NewCountQuery() *emptypb.Empty {
	return &emptypb.Empty{}
}

// paramsFromPatch reads a parameter update; non numeric fields are errors.
func paramsFromPatch(patch *structpb.Struct) (map[string]float64, error) {
	out := make(map[string]float64, len(patch.GetFields()))
	for k, v := range patch.GetFields() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("parameter %s: expected a number", k)
		}
		out[k] = n.NumberValue
	}
	return out, nil
}

// playerInputFromList reads [turn, thrust]; missing values are zero.
func playerInputFromList(l *structpb.ListValue) (turn, thrust float64) {
	values := l.GetValues()
	if len(values) > 0 {
		turn = values[0].GetNumberValue()
	}
	if len(values) > 1 {
		thrust = values[1].GetNumberValue()
	}
	return turn, thrust
}
