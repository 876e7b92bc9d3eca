package transport

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-signin/core"
)

// transportFailure classifies a failure observed on the wire and tags it with
// request metadata.
func (a *RESTAdapter) transportFailure(source error, metadata map[string]any) error {
	classifier := core.DefaultClassifier()
	if a != nil && a.Classifier != nil {
		classifier = a.Classifier
	}
	return withMetadata(classifier.Classify(source), metadata)
}

func transportInputError(source error, metadata map[string]any) error {
	return withMetadata(core.NewInvalidParameterError(source), metadata)
}

func transportInternalError(message string) error {
	return core.EnsureClassified(goerrors.New(message, goerrors.CategoryInternal))
}

func withMetadata(err *goerrors.Error, metadata map[string]any) *goerrors.Error {
	if err == nil || len(metadata) == 0 {
		return err
	}
	merged := make(map[string]any, len(err.Metadata)+len(metadata))
	for key, value := range metadata {
		merged[key] = value
	}
	for key, value := range err.Metadata {
		merged[key] = value
	}
	return err.WithMetadata(merged)
}
