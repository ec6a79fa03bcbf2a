package atlascloud

import (
	"context"

	"github.com/eleven-am/schemaviz/internal/driver"
)

const computeSchemaMutation = `
mutation Visualize($text: String!, $driver: Driver!) {
    visualize(input: {text: $text, driver: $driver, dryRun: true, type: SQL}) {
        node {
            hcl
        }
    }
}
`

const createVisualizationMutation = `
mutation Visualize($text: String!, $driver: Driver!) {
    visualize(input: {text: $text, driver: $driver, dryRun: false, type: HCL}) {
        node {
            extID
        }
    }
}
`

const shareVisualizationMutation = `
mutation ShareVisualization($fromID: String!) {
    shareVisualization(input: {fromID: $fromID}) {
        success
    }
}
`

var (
	hclQuery     = mustCompile(".data.visualize.node.hcl")
	extIDQuery   = mustCompile(".data.visualize.node.extID")
	successQuery = mustCompile(".data.shareVisualization.success")
)

// ComputeSchema converts raw SQL into Atlas HCL without persisting anything.
func (c *Client) ComputeSchema(ctx context.Context, sql string, d driver.Driver) (string, error) {
	doc, err := c.execute(ctx, "Visualize", computeSchemaMutation, map[string]any{
		"text":   sql,
		"driver": d,
	})
	if err != nil {
		return "", err
	}

	hcl, ok := lookup[string](doc, hclQuery)
	if !ok {
		return "", ErrSchemaNotComputed
	}
	return hcl, nil
}

// CreateVisualization persists a visualization of an HCL schema and returns
// its external ID.
func (c *Client) CreateVisualization(ctx context.Context, schema string, d driver.Driver) (string, error) {
	doc, err := c.execute(ctx, "Visualize", createVisualizationMutation, map[string]any{
		"text":   schema,
		"driver": d,
	})
	if err != nil {
		return "", err
	}

	extID, ok := lookup[string](doc, extIDQuery)
	if !ok || extID == "" {
		return "", ErrNotCreated
	}
	return extID, nil
}

// ShareVisualization makes a visualization publicly accessible.
func (c *Client) ShareVisualization(ctx context.Context, extID string) (bool, error) {
	doc, err := c.execute(ctx, "ShareVisualization", shareVisualizationMutation, map[string]any{
		"fromID": extID,
	})
	if err != nil {
		return false, err
	}

	success, _ := lookup[bool](doc, successQuery)
	return success, nil
}
