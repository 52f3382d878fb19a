package nats

const (
	StreamName = "INDEXSCHEMA"

	// SubjectReport carries every validation report; reports with mismatches go to its DLQ.
	SubjectReport = "schema.report"
)

var ReportSubjects = []string{
	SubjectReport,
}

func DLQSubject(subject string) string {
	return subject + ".dlq"
}
