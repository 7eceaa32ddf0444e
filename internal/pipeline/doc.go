// Package pipeline provides the pipeline execution engine.
//
// A pipeline is a caller-declared ordered chain of tool invocations with
// optional per-step filtering and parameter derivation from the previous
// step's result. Pipelines are data, not code: conditions and transforms are
// expressed as a small closed set of tagged variants so that pipeline
// definitions survive serialization.
//
// # Execution model
//
// Steps execute strictly sequentially through the tool dispatcher. A step
// whose condition evaluates false against the previous result is skipped
// entirely: no dispatch, no metric, and the previous result carries forward
// unchanged. The first failing step aborts the whole run; partial results are
// discarded and the failure surfaces as PIPELINE_STEP_ERROR, which is never
// retryable.
//
// # Pipeline shape
//
//	{
//	  "steps": [
//	    {"toolName": "listIssues", "params": {"teamId": "T1"}},
//	    {
//	      "toolName": "createIssue",
//	      "condition": {"kind": "nonEmpty", "field": "nodes"},
//	      "transform": {
//	        "kind": "fieldMap",
//	        "literal": {"teamId": "T1", "title": "follow-up"},
//	        "fields": {"description": "nodes.0.title"}
//	      }
//	    }
//	  ],
//	  "context": {"requestId": "..."}
//	}
package pipeline
