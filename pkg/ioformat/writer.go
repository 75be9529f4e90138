package ioformat

import (
	"encoding/csv"
	"io"
	"strconv"

	"dengue-forecast/pkg/denguedata"
)

var outputHeader = []string{
	"date", "lower_95", "lower_90", "lower_80", "lower_50",
	"pred", "upper_50", "upper_80", "upper_90", "upper_95",
}

// WriteForecastCSV writes the contract's exact ten-column output schema
// with LF line terminators.
func WriteForecastCSV(w io.Writer, records []denguedata.ForecastRecord) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = false

	if err := writer.Write(outputHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Date.Format("2006-01-02"),
			strconv.Itoa(r.Lower95), strconv.Itoa(r.Lower90),
			strconv.Itoa(r.Lower80), strconv.Itoa(r.Lower50),
			strconv.Itoa(r.Pred),
			strconv.Itoa(r.Upper50), strconv.Itoa(r.Upper80),
			strconv.Itoa(r.Upper90), strconv.Itoa(r.Upper95),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
