package tracker

import (
	"context"

	"github.com/trackops/issuegate/internal/domain"
	"github.com/trackops/issuegate/internal/tool"
)

// Tools returns the full set of tracker tools backed by client, ready to be
// registered with a tool.Registry.
func Tools(client *Client) []tool.Tool {
	return []tool.Tool{
		&listIssuesTool{client: client},
		&getIssueTool{client: client},
		&createIssueTool{client: client},
		&updateIssueTool{client: client},
		&searchIssuesTool{client: client},
		&listTeamsTool{client: client},
		&addCommentTool{client: client},
	}
}

const listIssuesQuery = `query Issues($teamId: String, $assigneeId: String, $first: Int) {
  issues(filter: {team: {id: {eq: $teamId}}, assignee: {id: {eq: $assigneeId}}}, first: $first) {
    nodes { id identifier title description priority state { name } assignee { id name } }
  }
}`

type listIssuesTool struct {
	client *Client
}

func (t *listIssuesTool) Name() string { return "listIssues" }

func (t *listIssuesTool) Validate(params domain.Params) error {
	if err := optionalString(params, "teamId"); err != nil {
		return err
	}
	if err := optionalString(params, "assigneeId"); err != nil {
		return err
	}
	return optionalInt(params, "first", 1, 250)
}

func (t *listIssuesTool) Invoke(ctx context.Context, params domain.Params) (domain.ToolResult, error) {
	data, err := t.client.Query(ctx, listIssuesQuery, params)
	if err != nil {
		return nil, err
	}
	return data["issues"], nil
}

const getIssueQuery = `query Issue($id: String!) {
  issue(id: $id) {
    id identifier title description priority createdAt updatedAt
    state { name } assignee { id name } team { id name }
  }
}`

type getIssueTool struct {
	client *Client
}

func (t *getIssueTool) Name() string { return "getIssue" }

func (t *getIssueTool) Validate(params domain.Params) error {
	return requireString(params, "id")
}

func (t *getIssueTool) Invoke(ctx context.Context, params domain.Params) (domain.ToolResult, error) {
	data, err := t.client.Query(ctx, getIssueQuery, params)
	if err != nil {
		return nil, err
	}
	return data["issue"], nil
}

const createIssueQuery = `mutation CreateIssue($teamId: String!, $title: String!, $description: String, $priority: Int, $assigneeId: String) {
  issueCreate(input: {teamId: $teamId, title: $title, description: $description, priority: $priority, assigneeId: $assigneeId}) {
    success
    issue { id identifier title }
  }
}`

type createIssueTool struct {
	client *Client
}

func (t *createIssueTool) Name() string { return "createIssue" }

func (t *createIssueTool) Validate(params domain.Params) error {
	if err := requireString(params, "teamId"); err != nil {
		return err
	}
	if err := requireString(params, "title"); err != nil {
		return err
	}
	if err := optionalString(params, "description"); err != nil {
		return err
	}
	if err := optionalString(params, "assigneeId"); err != nil {
		return err
	}
	return optionalInt(params, "priority", 0, 4)
}

func (t *createIssueTool) Invoke(ctx context.Context, params domain.Params) (domain.ToolResult, error) {
	data, err := t.client.Query(ctx, createIssueQuery, params)
	if err != nil {
		return nil, err
	}
	return data["issueCreate"], nil
}

const updateIssueQuery = `mutation UpdateIssue($id: String!, $title: String, $description: String, $stateId: String, $priority: Int) {
  issueUpdate(id: $id, input: {title: $title, description: $description, stateId: $stateId, priority: $priority}) {
    success
    issue { id identifier title state { name } }
  }
}`

type updateIssueTool struct {
	client *Client
}

func (t *updateIssueTool) Name() string { return "updateIssue" }

func (t *updateIssueTool) Validate(params domain.Params) error {
	if err := requireString(params, "id"); err != nil {
		return err
	}
	if err := optionalString(params, "title"); err != nil {
		return err
	}
	if err := optionalString(params, "description"); err != nil {
		return err
	}
	if err := optionalString(params, "stateId"); err != nil {
		return err
	}
	return optionalInt(params, "priority", 0, 4)
}

func (t *updateIssueTool) Invoke(ctx context.Context, params domain.Params) (domain.ToolResult, error) {
	data, err := t.client.Query(ctx, updateIssueQuery, params)
	if err != nil {
		return nil, err
	}
	return data["issueUpdate"], nil
}

const searchIssuesQuery = `query SearchIssues($query: String!, $first: Int) {
  issueSearch(query: $query, first: $first) {
    nodes { id identifier title description priority state { name } }
  }
}`

type searchIssuesTool struct {
	client *Client
}

func (t *searchIssuesTool) Name() string { return "searchIssues" }

func (t *searchIssuesTool) Validate(params domain.Params) error {
	if err := requireString(params, "query"); err != nil {
		return err
	}
	return optionalInt(params, "first", 1, 250)
}

func (t *searchIssuesTool) Invoke(ctx context.Context, params domain.Params) (domain.ToolResult, error) {
	data, err := t.client.Query(ctx, searchIssuesQuery, params)
	if err != nil {
		return nil, err
	}
	return data["issueSearch"], nil
}

const listTeamsQuery = `query Teams($first: Int) {
  teams(first: $first) {
    nodes { id name key }
  }
}`

type listTeamsTool struct {
	client *Client
}

func (t *listTeamsTool) Name() string { return "listTeams" }

func (t *listTeamsTool) Validate(params domain.Params) error {
	return optionalInt(params, "first", 1, 250)
}

func (t *listTeamsTool) Invoke(ctx context.Context, params domain.Params) (domain.ToolResult, error) {
	data, err := t.client.Query(ctx, listTeamsQuery, params)
	if err != nil {
		return nil, err
	}
	return data["teams"], nil
}

const addCommentQuery = `mutation AddComment($issueId: String!, $body: String!) {
  commentCreate(input: {issueId: $issueId, body: $body}) {
    success
    comment { id body }
  }
}`

type addCommentTool struct {
	client *Client
}

func (t *addCommentTool) Name() string { return "addComment" }

func (t *addCommentTool) Validate(params domain.Params) error {
	if err := requireString(params, "issueId"); err != nil {
		return err
	}
	return requireString(params, "body")
}

func (t *addCommentTool) Invoke(ctx context.Context, params domain.Params) (domain.ToolResult, error) {
	data, err := t.client.Query(ctx, addCommentQuery, params)
	if err != nil {
		return nil, err
	}
	return data["commentCreate"], nil
}
