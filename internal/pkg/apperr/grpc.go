package apperr

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var kindToCode = map[Kind]codes.Code{
	KindNotFound:     codes.NotFound,
	KindBusinessRule: codes.FailedPrecondition,
	KindValidation:   codes.InvalidArgument,
	KindUnavailable:  codes.Unavailable,
	KindInternal:     codes.Internal,
}

// ToStatus converts err into a gRPC status error. Errors that already carry a
// status are returned untouched.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return status.Error(kindToCode[e.Kind], e.Message)
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// FromStatus turns an error returned by a gRPC client call back into an
// *Error. Transport failures and deadlines become KindUnavailable.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok {
		return Unavailable(err, "remote call failed")
	}
	msg := st.Message()
	switch st.Code() {
	case codes.NotFound:
		return &Error{Kind: KindNotFound, Message: msg, Err: err}
	case codes.FailedPrecondition:
		return &Error{Kind: KindBusinessRule, Message: msg, Err: err}
	case codes.InvalidArgument:
		return &Error{Kind: KindValidation, Message: msg, Err: err}
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return &Error{Kind: KindUnavailable, Message: msg, Err: err}
	case codes.Canceled:
		return context.Canceled
	default:
		return &Error{Kind: KindInternal, Message: msg, Err: err}
	}
}
