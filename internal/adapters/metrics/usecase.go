// Package metrics は社員ユースケースの Prometheus 計測を提供します。
package metrics

import (
	"context"
	"time"

	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK = "ok"
	// 社員が見つからなかった参照です。GetEmployee はエラーを返さないため別に数えます。
	resultAbsent = "absent"
)

type collectors struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newCollectors(reg prometheus.Registerer) *collectors {
	factory := promauto.With(reg)
	return &collectors{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ems",
			Subsystem: "employee",
			Name:      "operations_total",
			Help:      "Total number of employee operations by result.",
		}, []string{"operation", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ems",
			Subsystem: "employee",
			Name:      "operation_duration_seconds",
			Help:      "Latency distribution for employee operations.",
			Buckets: []float64{
				0.001, 0.002, 0.005,
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5,
			},
		}, []string{"operation"}),
	}
}

func (c *collectors) observe(operation string, start time.Time, result string) {
	c.operations.WithLabelValues(operation, result).Inc()
	c.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func resultOf(err error) string {
	if err == nil {
		return resultOK
	}
	return employee.KindOf(err).String()
}

var _ employee.UseCase = (*InstrumentedUseCase)(nil)

// InstrumentedUseCase は employee.UseCase の各操作の件数と処理時間を記録します。
type InstrumentedUseCase struct {
	next    employee.UseCase
	metrics *collectors
}

// NewInstrumentedUseCase は reg にコレクターを登録し、next を包んだ UseCase を返します。
func NewInstrumentedUseCase(next employee.UseCase, reg prometheus.Registerer) *InstrumentedUseCase {
	return &InstrumentedUseCase{next: next, metrics: newCollectors(reg)}
}

func (u *InstrumentedUseCase) ListEmployees(ctx context.Context) ([]*employee.Employee, error) {
	start := time.Now()
	out, err := u.next.ListEmployees(ctx)
	u.metrics.observe("list", start, resultOf(err))
	return out, err
}

func (u *InstrumentedUseCase) GetEmployee(ctx context.Context, id string) (*employee.Employee, error) {
	start := time.Now()
	out, err := u.next.GetEmployee(ctx, id)
	result := resultOf(err)
	if err == nil && out == nil {
		result = resultAbsent
	}
	u.metrics.observe("get", start, result)
	return out, err
}

func (u *InstrumentedUseCase) CreateEmployee(ctx context.Context, in employee.EmployeeInput) (*employee.Employee, error) {
	start := time.Now()
	out, err := u.next.CreateEmployee(ctx, in)
	u.metrics.observe("create", start, resultOf(err))
	return out, err
}

func (u *InstrumentedUseCase) UpdateEmployee(ctx context.Context, id string, in employee.EmployeeInput) (*employee.Employee, error) {
	start := time.Now()
	out, err := u.next.UpdateEmployee(ctx, id, in)
	u.metrics.observe("update", start, resultOf(err))
	return out, err
}

func (u *InstrumentedUseCase) DeleteEmployee(ctx context.Context, id string) (*employee.Employee, error) {
	start := time.Now()
	out, err := u.next.DeleteEmployee(ctx, id)
	u.metrics.observe("delete", start, resultOf(err))
	return out, err
}
