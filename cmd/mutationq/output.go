package main

import (
	"fmt"
	"io"

	"github.com/velmie/mutationq"
)

func writeJSONLines(w io.Writer, entries []mutationq.Entry) error {
	for _, entry := range entries {
		data, err := mutationq.EncodeEntry(entry)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}

	return nil
}

func target(op mutationq.Operation) string {
	switch op := op.(type) {
	case mutationq.Insert:
		return op.Table
	case mutationq.Update:
		return op.Table
	case mutationq.Delete:
		return op.Table
	case mutationq.RPC:
		return op.Procedure
	case mutationq.FunctionCall:
		return op.Function
	case mutationq.Upload:
		return op.Bucket + "/" + op.Path
	default:
		return ""
	}
}
