package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/youlu/youlu/pkg/errors"
	"github.com/youlu/youlu/pkg/model"
)

// StateRepositoryInterface 优化状态仓储接口
type StateRepositoryInterface interface {
	Create(ctx context.Context, state *model.OptimizationState) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.OptimizationState, error)
	GetLatest(ctx context.Context, officeID uuid.UUID, date string) (*model.OptimizationState, error)
	ListByOffice(ctx context.Context, officeID uuid.UUID, date string) ([]*model.OptimizationState, error)
	Lineage(ctx context.Context, id uuid.UUID) ([]*model.OptimizationState, error)
}

// StateRepository 优化状态仓储
// 状态是不可变快照：只插入、不更新；路线图整体以JSONB落库
type StateRepository struct {
	db DB
}

// NewStateRepository 创建优化状态仓储
func NewStateRepository(db DB) *StateRepository {
	return &StateRepository{db: db}
}

// Create 持久化优化状态
// 以状态ID做冲突检测并忽略重复插入，保证每个状态至多一次落库
func (r *StateRepository) Create(ctx context.Context, state *model.OptimizationState) error {
	routesJSON, err := json.Marshal(state.Routes)
	if err != nil {
		return fmt.Errorf("序列化路线失败: %w", err)
	}

	query := `
		INSERT INTO optimization_states (
			id, previous_state_id, office_id, date, status, routes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.db.ExecContext(ctx, query,
		state.ID, state.PreviousStateID, state.OfficeID, state.Date,
		string(state.Status), routesJSON, state.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "持久化优化状态失败")
	}

	return nil
}

// GetByID 根据ID获取优化状态
func (r *StateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.OptimizationState, error) {
	query := `
		SELECT id, previous_state_id, office_id, date, status, routes, created_at
		FROM optimization_states
		WHERE id = $1
	`

	state, err := scanState(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询优化状态失败")
	}
	return state, nil
}

// GetLatest 获取办事处某日最新的优化状态
func (r *StateRepository) GetLatest(ctx context.Context, officeID uuid.UUID, date string) (*model.OptimizationState, error) {
	query := `
		SELECT id, previous_state_id, office_id, date, status, routes, created_at
		FROM optimization_states
		WHERE office_id = $1 AND date = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	state, err := scanState(r.db.QueryRowContext(ctx, query, officeID, date))
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询优化状态失败")
	}
	return state, nil
}

// ListByOffice 列出办事处某日的全部优化状态（按时间倒序）
func (r *StateRepository) ListByOffice(ctx context.Context, officeID uuid.UUID, date string) ([]*model.OptimizationState, error) {
	query := `
		SELECT id, previous_state_id, office_id, date, status, routes, created_at
		FROM optimization_states
		WHERE office_id = $1 AND date = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, officeID, date)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询优化状态失败")
	}
	defer rows.Close()

	var states []*model.OptimizationState
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "扫描优化状态失败")
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

// Lineage 沿PreviousStateID回溯完整的审计链路（从新到旧）
func (r *StateRepository) Lineage(ctx context.Context, id uuid.UUID) ([]*model.OptimizationState, error) {
	var chain []*model.OptimizationState

	current := &id
	for current != nil {
		state, err := r.GetByID(ctx, *current)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) && len(chain) > 0 {
				break
			}
			return nil, err
		}
		chain = append(chain, state)
		current = state.PreviousStateID

		// 链路长度保护
		if len(chain) > 100 {
			break
		}
	}

	return chain, nil
}

// scanState 从查询结果扫描优化状态
func scanState(row Scanner) (*model.OptimizationState, error) {
	var (
		state      model.OptimizationState
		previousID sql.NullString
		status     string
		routesJSON []byte
	)

	err := row.Scan(&state.ID, &previousID, &state.OfficeID, &state.Date, &status, &routesJSON, &state.CreatedAt)
	if err != nil {
		return nil, err
	}

	if previousID.Valid {
		prev, err := uuid.Parse(previousID.String)
		if err != nil {
			return nil, fmt.Errorf("解析前序状态ID失败: %w", err)
		}
		state.PreviousStateID = &prev
	}

	state.Status = model.StateStatus(status)

	if err := json.Unmarshal(routesJSON, &state.Routes); err != nil {
		return nil, fmt.Errorf("反序列化路线失败: %w", err)
	}

	return &state, nil
}
