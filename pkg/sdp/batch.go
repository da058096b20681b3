package sdp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedResourceType  = errors.New("unsupported resource type")
	ErrUnsupportedOperationType = errors.New("unsupported operation type")
	ErrInvalidDataTypeRequest   = errors.New("invalid data type for request operation")
	ErrInvalidDataTypeNote      = errors.New("invalid data type for note operation")
	ErrInvalidDataTypeTask      = errors.New("invalid data type for task operation")
	ErrInvalidDataTypeTech      = errors.New("invalid data type for technician operation")
	ErrTransactionFailed        = errors.New("transaction failed")
)

// UpdateDataWrapper wraps update data with the resource ID for consistent
// handling.
type UpdateDataWrapper[T any] struct {
	ID      string
	Request *T
}

// NoteDataWrapper carries the owning request ID for note operations.
type NoteDataWrapper struct {
	RequestID string
	NoteID    string
	Input     *NoteInput
}

// TaskDataWrapper carries the owning request ID for task operations.
type TaskDataWrapper struct {
	RequestID string
	TaskID    string
	Input     *TaskInput
}

// CloseDataWrapper carries the closure details for a close operation.
type CloseDataWrapper struct {
	ID    string
	Input *CloseInput
}

// AssignDataWrapper carries the assignee for an assign operation.
type AssignDataWrapper struct {
	ID    string
	Input *AssignInput
}

// OnHoldDataWrapper carries the hold options for an onhold operation.
type OnHoldDataWrapper struct {
	ID      string
	Options OnHoldOptions
}

// ResolveDataWrapper carries the resolution text for a resolve operation.
type ResolveDataWrapper struct {
	ID         string
	Resolution string
}

// handleCrudOperation is a helper that handles the common CRUD pattern.
func handleCrudOperation(
	operation BatchOperation,
	createFunc func() (interface{}, error),
	updateFunc func() (interface{}, error),
	deleteFunc func() (interface{}, error),
	getFunc func() (interface{}, error),
) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	switch operation.Type {
	case "create":
		data, err := createFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "update":
		data, err := updateFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "delete":
		data, err := deleteFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "get":
		data, err := getFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	default:
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)
	}

	return result
}

// CRUDOperationConfig holds the handlers for one resource's CRUD operations.
type CRUDOperationConfig struct {
	InvalidDataTypeErr error
	CreateFunc         func(ctx context.Context, operation BatchOperation) (interface{}, error)
	UpdateFunc         func(ctx context.Context, operation BatchOperation) (interface{}, error)
	DeleteFunc         func(ctx context.Context, operation BatchOperation) (interface{}, error)
	GetFunc            func(ctx context.Context, operation BatchOperation) (interface{}, error)
}

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	ID       string
	Type     string // "create", "update", "delete", "get", "close", "pickup", "assign", "onhold", "resolve"
	Resource string // "request", "note", "task", "technician"
	Data     interface{}
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Data     interface{}
	Error    error
	Duration time.Duration
}

// BatchExecutor executes batch operations with bounded concurrency.
type BatchExecutor struct {
	client      Client
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Client, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs a batch of operations.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)

			if result.Error != nil && errors.Is(result.Error, context.DeadlineExceeded) {
				result.Success = false
				result.Error = fmt.Errorf("%w after %s", ErrBatchOperationTimeout, b.timeout)
			}

			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results, nil
}

// executeGenericCrudOperation handles CRUD operations using the provided
// configuration.
func (b *BatchExecutor) executeGenericCrudOperation(ctx context.Context, operation BatchOperation, config CRUDOperationConfig) *BatchResult {
	return handleCrudOperation(operation,
		func() (interface{}, error) { return config.CreateFunc(ctx, operation) },
		func() (interface{}, error) { return config.UpdateFunc(ctx, operation) },
		func() (interface{}, error) { return config.DeleteFunc(ctx, operation) },
		func() (interface{}, error) { return config.GetFunc(ctx, operation) },
	)
}

// createNoteOperationConfig creates the CRUD configuration for notes.
func (b *BatchExecutor) createNoteOperationConfig() CRUDOperationConfig {
	return CRUDOperationConfig{
		InvalidDataTypeErr: ErrInvalidDataTypeNote,
		CreateFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if data, ok := operation.Data.(*NoteDataWrapper); ok {
				return b.client.Requests().Notes().Create(ctx, data.RequestID, data.Input)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeNote)
		},
		UpdateFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if data, ok := operation.Data.(*NoteDataWrapper); ok {
				return b.client.Requests().Notes().Update(ctx, data.RequestID, data.NoteID, data.Input)
			}

			return nil, fmt.Errorf("%w update", ErrInvalidDataTypeNote)
		},
		DeleteFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if data, ok := operation.Data.(*NoteDataWrapper); ok {
				err := b.client.Requests().Notes().Delete(ctx, data.RequestID, data.NoteID)
				if err != nil {
					return nil, fmt.Errorf("deleting note: %w", err)
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeNote)
		},
		GetFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if data, ok := operation.Data.(*NoteDataWrapper); ok {
				return b.client.Requests().Notes().Get(ctx, data.RequestID, data.NoteID)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeNote)
		},
	}
}

// createTaskOperationConfig creates the CRUD configuration for tasks.
func (b *BatchExecutor) createTaskOperationConfig() CRUDOperationConfig {
	return CRUDOperationConfig{
		InvalidDataTypeErr: ErrInvalidDataTypeTask,
		CreateFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if data, ok := operation.Data.(*TaskDataWrapper); ok {
				return b.client.Requests().Tasks().Create(ctx, data.RequestID, data.Input)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeTask)
		},
		UpdateFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if data, ok := operation.Data.(*TaskDataWrapper); ok {
				return b.client.Requests().Tasks().Update(ctx, data.RequestID, data.TaskID, data.Input)
			}

			return nil, fmt.Errorf("%w update", ErrInvalidDataTypeTask)
		},
		DeleteFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if data, ok := operation.Data.(*TaskDataWrapper); ok {
				err := b.client.Requests().Tasks().Delete(ctx, data.RequestID, data.TaskID)
				if err != nil {
					return nil, fmt.Errorf("deleting task: %w", err)
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeTask)
		},
		GetFunc: func(ctx context.Context, operation BatchOperation) (interface{}, error) {
			if data, ok := operation.Data.(*TaskDataWrapper); ok {
				return b.client.Requests().Tasks().Get(ctx, data.RequestID, data.TaskID)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeTask)
		},
	}
}

// executeOperation executes a single operation.
func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{
		ID: operation.ID,
	}

	switch operation.Resource {
	case "request":
		result = b.executeRequestOperation(ctx, operation)
	case "note":
		result = b.executeGenericCrudOperation(ctx, operation, b.createNoteOperationConfig())
	case "task":
		result = b.executeGenericCrudOperation(ctx, operation, b.createTaskOperationConfig())
	case "technician":
		result = b.executeTechnicianOperation(ctx, operation)
	default:
		result.Success = false
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedResourceType, operation.Resource)
	}

	return result
}

// executeRequestOperation handles request operations, including the
// lifecycle verbs that plain CRUD does not cover.
func (b *BatchExecutor) executeRequestOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	var (
		data interface{}
		err  error
	)

	switch operation.Type {
	case "create":
		if req, ok := operation.Data.(*RequestCreate); ok {
			data, err = b.client.Requests().Create(ctx, req)
		} else {
			err = fmt.Errorf("%w create", ErrInvalidDataTypeRequest)
		}
	case "update":
		if wrapper, ok := operation.Data.(*UpdateDataWrapper[RequestUpdate]); ok {
			data, err = b.client.Requests().Update(ctx, wrapper.ID, wrapper.Request)
		} else {
			err = fmt.Errorf("%w update", ErrInvalidDataTypeRequest)
		}
	case "delete":
		if requestID, ok := operation.Data.(string); ok {
			err = b.client.Requests().Delete(ctx, requestID)
		} else {
			err = fmt.Errorf("%w delete", ErrInvalidDataTypeRequest)
		}
	case "get":
		if requestID, ok := operation.Data.(string); ok {
			data, err = b.client.Requests().Get(ctx, requestID)
		} else {
			err = fmt.Errorf("%w get", ErrInvalidDataTypeRequest)
		}
	case "close":
		if wrapper, ok := operation.Data.(*CloseDataWrapper); ok {
			err = b.client.Requests().Close(ctx, wrapper.ID, wrapper.Input)
		} else {
			err = fmt.Errorf("%w close", ErrInvalidDataTypeRequest)
		}
	case "pickup":
		if requestID, ok := operation.Data.(string); ok {
			data, err = b.client.Requests().Pickup(ctx, requestID)
		} else {
			err = fmt.Errorf("%w pickup", ErrInvalidDataTypeRequest)
		}
	case "assign":
		if wrapper, ok := operation.Data.(*AssignDataWrapper); ok {
			err = b.client.Requests().Assign(ctx, wrapper.ID, wrapper.Input)
		} else {
			err = fmt.Errorf("%w assign", ErrInvalidDataTypeRequest)
		}
	case "onhold":
		if wrapper, ok := operation.Data.(*OnHoldDataWrapper); ok {
			data, err = b.client.Requests().PlaceOnHold(ctx, wrapper.ID, wrapper.Options)
		} else {
			err = fmt.Errorf("%w onhold", ErrInvalidDataTypeRequest)
		}
	case "resolve":
		if wrapper, ok := operation.Data.(*ResolveDataWrapper); ok {
			data, err = b.client.Requests().Resolve(ctx, wrapper.ID, wrapper.Resolution)
		} else {
			err = fmt.Errorf("%w resolve", ErrInvalidDataTypeRequest)
		}
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)
	}

	result.Success = err == nil
	result.Data = data
	result.Error = err

	return result
}

// executeTechnicianOperation handles technician operations. Technicians are
// read-only, so only "get" is supported.
func (b *BatchExecutor) executeTechnicianOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	if operation.Type != "get" {
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)

		return result
	}

	technicianID, ok := operation.Data.(string)
	if !ok {
		result.Error = fmt.Errorf("%w get", ErrInvalidDataTypeTech)

		return result
	}

	data, err := b.client.Technicians().Get(ctx, technicianID)
	result.Success = err == nil
	result.Data = data
	result.Error = err

	return result
}

// BatchBuilder helps build batch operations.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		operations: make([]BatchOperation, 0),
	}
}

// AddCreateRequest adds a request creation operation.
func (b *BatchBuilder) AddCreateRequest(id string, request *RequestCreate) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "request",
		Data:     request,
	})

	return b
}

// AddUpdateRequest adds a request update operation.
func (b *BatchBuilder) AddUpdateRequest(id, requestID string, request *RequestUpdate) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "update",
		Resource: "request",
		Data: &UpdateDataWrapper[RequestUpdate]{
			ID:      requestID,
			Request: request,
		},
	})

	return b
}

// AddDeleteRequest adds a request deletion operation.
func (b *BatchBuilder) AddDeleteRequest(id, requestID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "delete",
		Resource: "request",
		Data:     requestID,
	})

	return b
}

// AddGetRequest adds a request get operation.
func (b *BatchBuilder) AddGetRequest(id, requestID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "get",
		Resource: "request",
		Data:     requestID,
	})

	return b
}

// AddCloseRequest adds a request close operation.
func (b *BatchBuilder) AddCloseRequest(id, requestID string, input *CloseInput) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "close",
		Resource: "request",
		Data: &CloseDataWrapper{
			ID:    requestID,
			Input: input,
		},
	})

	return b
}

// AddPickupRequest adds a request pickup operation.
func (b *BatchBuilder) AddPickupRequest(id, requestID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "pickup",
		Resource: "request",
		Data:     requestID,
	})

	return b
}

// AddAssignRequest adds a request assignment operation.
func (b *BatchBuilder) AddAssignRequest(id, requestID string, input *AssignInput) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "assign",
		Resource: "request",
		Data: &AssignDataWrapper{
			ID:    requestID,
			Input: input,
		},
	})

	return b
}

// AddOnHoldRequest adds a place-on-hold operation.
func (b *BatchBuilder) AddOnHoldRequest(id, requestID string, options OnHoldOptions) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "onhold",
		Resource: "request",
		Data: &OnHoldDataWrapper{
			ID:      requestID,
			Options: options,
		},
	})

	return b
}

// AddResolveRequest adds a request resolution operation.
func (b *BatchBuilder) AddResolveRequest(id, requestID, resolution string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "resolve",
		Resource: "request",
		Data: &ResolveDataWrapper{
			ID:         requestID,
			Resolution: resolution,
		},
	})

	return b
}

// AddCreateNote adds a note creation operation.
func (b *BatchBuilder) AddCreateNote(id, requestID string, input *NoteInput) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "note",
		Data: &NoteDataWrapper{
			RequestID: requestID,
			Input:     input,
		},
	})

	return b
}

// AddDeleteNote adds a note deletion operation.
func (b *BatchBuilder) AddDeleteNote(id, requestID, noteID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "delete",
		Resource: "note",
		Data: &NoteDataWrapper{
			RequestID: requestID,
			NoteID:    noteID,
		},
	})

	return b
}

// AddCreateTask adds a task creation operation.
func (b *BatchBuilder) AddCreateTask(id, requestID string, input *TaskInput) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "task",
		Data: &TaskDataWrapper{
			RequestID: requestID,
			Input:     input,
		},
	})

	return b
}

// AddGetTechnician adds a technician get operation.
func (b *BatchBuilder) AddGetTechnician(id, technicianID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "get",
		Resource: "technician",
		Data:     technicianID,
	})

	return b
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the built operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}

// BatchTransaction represents a transactional batch of operations.
type BatchTransaction struct {
	operations []BatchOperation
	results    []BatchResult
	executor   *BatchExecutor
	rollback   bool
}

// NewBatchTransaction creates a new batch transaction.
func NewBatchTransaction(executor *BatchExecutor) *BatchTransaction {
	return &BatchTransaction{
		executor:   executor,
		operations: make([]BatchOperation, 0),
		rollback:   true,
	}
}

// Add adds an operation to the transaction.
func (t *BatchTransaction) Add(operation BatchOperation) *BatchTransaction {
	t.operations = append(t.operations, operation)

	return t
}

// SetRollback sets whether to roll back on failure.
func (t *BatchTransaction) SetRollback(rollback bool) *BatchTransaction {
	t.rollback = rollback

	return t
}

// Execute executes the transaction.
func (t *BatchTransaction) Execute(ctx context.Context) ([]BatchResult, error) {
	results, err := t.executor.Execute(ctx, t.operations)
	t.results = results

	var failedOps []string

	for _, result := range results {
		if !result.Success {
			failedOps = append(failedOps, result.ID)
		}
	}

	if len(failedOps) > 0 && t.rollback {
		t.performRollback(ctx)

		return results, fmt.Errorf("%w, %d operations failed: %v", ErrTransactionFailed, len(failedOps), failedOps)
	}

	return results, err
}

// performRollback deletes the requests created by successful operations.
// Deletes and updates cannot be reversed without the prior state, so they
// are left for manual intervention.
func (t *BatchTransaction) performRollback(ctx context.Context) {
	var rollbackOps []BatchOperation

	for i, result := range t.results {
		if !result.Success {
			continue
		}

		original := t.operations[i]
		if original.Type != "create" || original.Resource != "request" {
			continue
		}

		created, ok := result.Data.(*Request)
		if !ok || created == nil || created.ID == "" {
			continue
		}

		rollbackOps = append(rollbackOps, BatchOperation{
			ID:       "rollback_" + original.ID,
			Type:     "delete",
			Resource: "request",
			Data:     created.ID,
		})
	}

	if len(rollbackOps) > 0 {
		_, _ = t.executor.Execute(ctx, rollbackOps)
	}
}
