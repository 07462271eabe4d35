package dashboard

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sartorproj/epicast/arima"
	"github.com/sartorproj/epicast/dataset"
	"github.com/sartorproj/epicast/forecast"
	"github.com/sartorproj/epicast/source"
	"github.com/sartorproj/epicast/timeseries"
)

// UserMessage returns the text shown to the user for err. ok is false
// when err carries none of the pipeline error tags.
func UserMessage(err error) (msg string, ok bool) {
	switch {
	case err == nil:
		return "", false
	case goerr.HasTag(err, ErrTagInvalidSelection):
		return "Invalid selection: " + rootMessage(err) + ".", true
	case goerr.HasTag(err, forecast.ErrTagInvalidHorizon):
		return "The forecast horizon must be at least one day.", true
	case goerr.HasTag(err, source.ErrTagDataFetch):
		return "Could not download the case data. Check the data source and try again.", true
	case goerr.HasTag(err, dataset.ErrTagParse):
		return "The case data is malformed and could not be read.", true
	case goerr.HasTag(err, timeseries.ErrTagDataGap):
		return "The selected range begins with missing data that cannot be filled. Choose a later start date.", true
	case goerr.HasTag(err, arima.ErrTagModelFit):
		return "Not enough usable data to fit the forecast model. Widen the date range or choose another country.", true
	default:
		return "An unexpected error occurred.", false
	}
}

// rootMessage returns the message of the innermost error in the chain.
func rootMessage(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err.Error()
		}
		err = inner
	}
}
