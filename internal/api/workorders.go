package api

import (
	"context"
	"fmt"

	"github.com/blackenaxe/icom/internal/model"
)

// WorkOrders lists all work orders.
func (c *Client) WorkOrders(ctx context.Context) ([]model.WorkOrder, error) {
	var orders []model.WorkOrder
	if err := c.get(ctx, "/api/emirler", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// WorkOrder fetches a single work order with its annotations.
func (c *Client) WorkOrder(ctx context.Context, id int) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if err := c.get(ctx, fmt.Sprintf("/api/emirler/%d", id), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateWorkOrder creates a new work order.
func (c *Client) CreateWorkOrder(ctx context.Context, in model.WorkOrderInput) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if err := c.postJSON(ctx, "/api/emirler", in, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateWorkOrder replaces the mutable fields of an existing work order.
func (c *Client) UpdateWorkOrder(ctx context.Context, id int, in model.WorkOrderInput) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if err := c.putJSON(ctx, fmt.Sprintf("/api/emirler/%d", id), in, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteWorkOrder removes a work order.
func (c *Client) DeleteWorkOrder(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/api/emirler/%d", id))
}

// AddWorkOrderUpdate attaches a new annotation to a work order.
func (c *Client) AddWorkOrderUpdate(ctx context.Context, orderID int, description string) (*model.WorkOrderUpdate, error) {
	body := map[string]string{"description": description}
	var update model.WorkOrderUpdate
	err := c.postJSON(ctx, fmt.Sprintf("/api/emirler/%d/updates", orderID), body, &update)
	if err != nil {
		return nil, err
	}
	return &update, nil
}

// EditWorkOrderUpdate rewrites the text of an existing annotation.
func (c *Client) EditWorkOrderUpdate(ctx context.Context, updateID int, description string) (*model.WorkOrderUpdate, error) {
	body := map[string]string{"description": description}
	var update model.WorkOrderUpdate
	err := c.putJSON(ctx, fmt.Sprintf("/api/updates/%d", updateID), body, &update)
	if err != nil {
		return nil, err
	}
	return &update, nil
}
