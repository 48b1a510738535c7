package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var totalCases atomic.Int64

var (
	ConformanceCasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conformance_cases_total",
		Help: "Conformance cases executed, by kernel and outcome",
	}, []string{"kernel", "outcome"})

	ConformanceRelError = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "conformance_relative_error",
		Help:    "Relative Frobenius error of candidate kernels vs reference",
		Buckets: []float64{1e-8, 1e-7, 1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 1e-1, 1},
	}, []string{"kernel", "dtype"})

	KernelDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kernel_duration_seconds",
		Help:    "Histogram of kernel execution times",
		Buckets: prometheus.DefBuckets,
	}, []string{"kernel"})

	NumericalInstability = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "numerical_instability_total",
		Help: "Total number of NaN/Inf values detected in kernel outputs",
	}, []string{"tensor", "type"})

	ValidationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "validation_errors_total",
		Help: "Total number of validation errors",
	}, []string{"operation", "error_type"})

	DeviceMemoryAllocated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "device_memory_allocated_bytes",
		Help: "Current bytes allocated for device tensors",
	})

	MatrixDimension = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "conformance_matrix_dimension",
		Help:    "Distribution of matrix dimensions exercised",
		Buckets: []float64{64, 128, 256, 512, 1024, 2048, 4096},
	})
)

func RecordCase(kernel, outcome string) {
	totalCases.Add(1)
	ConformanceCasesTotal.WithLabelValues(kernel, outcome).Inc()
}

func TotalCases() int64 {
	return totalCases.Load()
}

func RecordRelError(kernel, dtype string, relErr float64) {
	ConformanceRelError.WithLabelValues(kernel, dtype).Observe(relErr)
}

func RecordKernelDuration(name string, duration time.Duration) {
	KernelDuration.WithLabelValues(name).Observe(duration.Seconds())
}

func RecordNumericalInstability(name string, nanCount, infCount int) {
	if nanCount > 0 {
		NumericalInstability.WithLabelValues(name, "nan").Add(float64(nanCount))
	}
	if infCount > 0 {
		NumericalInstability.WithLabelValues(name, "inf").Add(float64(infCount))
	}
}

func RecordValidationError(operation, errorType string) {
	ValidationErrors.WithLabelValues(operation, errorType).Inc()
}

func RecordDeviceMemory(bytes int64) {
	DeviceMemoryAllocated.Set(float64(bytes))
}

func RecordMatrixDimension(dim int) {
	MatrixDimension.Observe(float64(dim))
}
