package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/classtrack/classtrack/core/attendance"
)

func (cli *commandLine) printReport(classID string) error {
	report, err := cli.attendanceSvc.ClassReport(context.Background(), classID)
	if err != nil {
		return err
	}
	cli.writeReport(report)
	return nil
}

func (cli *commandLine) printDigest() error {
	reports, err := cli.attendanceSvc.CriticalDigest(context.Background())
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(cli.out, "no student has reached an absence limit")
		return nil
	}
	for _, report := range reports {
		cli.writeReport(report)
	}
	return nil
}

func (cli *commandLine) writeReport(report attendance.Report) {
	fmt.Fprintf(cli.out, "%s (limit %d)\n", report.Class.Name, report.Class.MaxAbsences)
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT\tABSENCES\tPROGRESS\t")
	for _, row := range report.Rows {
		mark := ""
		if row.Critical() {
			mark = "!"
		}
		fmt.Fprintf(w, "%s\t%d/%d\t%.0f%%\t%s\n", row.Name, row.Count, row.Threshold, row.Progress()*100, mark)
	}
	_ = w.Flush()
}
