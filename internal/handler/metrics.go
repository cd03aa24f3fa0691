package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attendanceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_writes_total",
		Help: "Attendance upserts by resulting status.",
	}, []string{"status"})

	calendarReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_reads_total",
		Help: "Calendar month reads by cache outcome.",
	}, []string{"cache"})
)
