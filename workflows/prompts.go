/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflows

import (
	"fmt"
	"strings"

	"chainguard.dev/devtools/agents/generate"
)

// promptBudget leaves headroom under the adapter's prompt bound for the fixed
// instruction text around the repository content.
const promptBudget = generate.MaxPromptLen - 4096

func reviewPrompt(filename, patch string) string {
	return fmt.Sprintf(`Analyze this code change and identify:
1. Security vulnerabilities
2. Performance issues
3. Best practice violations
4. Potential bugs
5. Suggestions for improvement

File: %s
Changes:
`+"```"+`
%s
`+"```"+`

Provide specific line-by-line feedback in JSON format:
{
  "summary": "overall assessment",
  "comments": [
    {
      "path": "filename",
      "line": line_number,
      "body": "specific feedback"
    }
  ]
}`, filename, truncate(patch, promptBudget))
}

func docsPrompt(code string) string {
	return fmt.Sprintf(`Analyze this codebase and generate comprehensive documentation:

%s

Generate:
1. Project overview
2. Architecture description
3. API documentation
4. Setup instructions
5. Usage examples
6. Contributing guidelines

Format as Markdown.`, truncate(code, promptBudget))
}

func triagePrompt(title, body string) string {
	return fmt.Sprintf(`Analyze this GitHub issue and provide:
1. Appropriate labels (bug, feature, enhancement, documentation, etc.)
2. Priority level (critical, high, medium, low)
3. Estimated complexity (1-10)
4. Suggested assignee type (frontend, backend, devops, etc.)
5. Brief analysis

Issue: %s
Description: %s

Return JSON:
{
  "labels": ["label1", "label2"],
  "priority": "medium",
  "complexity": 5,
  "assignee_type": "backend",
  "comment": "analysis and recommendations"
}`, title, truncate(body, promptBudget/2))
}

func migratePrompt(from, to, content string) string {
	return fmt.Sprintf(`Migrate this code from %s to %s:

`+"```"+`
%s
`+"```"+`

Return ONLY the migrated code, no explanations.`, from, to, truncate(content, promptBudget))
}

func conflictPrompt(baseContent, headContent string) string {
	// Both versions share the budget.
	half := promptBudget / 2
	return fmt.Sprintf(`Resolve this merge conflict intelligently:

BASE VERSION:
`+"```"+`
%s
`+"```"+`

HEAD VERSION:
`+"```"+`
%s
`+"```"+`

Provide:
1. Resolved code that preserves intent from both versions
2. Reasoning for resolution choices

Return JSON:
{
  "resolved_code": "the merged code",
  "reasoning": "explanation of resolution strategy"
}`, truncate(baseContent, half), truncate(headContent, half))
}

// sourceExtensions are the file extensions the documentation workflow reads.
var sourceExtensions = []string{".go", ".js", ".ts", ".py"}

func isSourceFile(path string) bool {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// frameworkExtensions maps a framework name to the extension of its source
// files for migration candidate filtering.
var frameworkExtensions = map[string]string{
	"react":   ".js",
	"vue":     ".js",
	"angular": ".ts",
	"express": ".js",
	"fastify": ".js",
	"flask":   ".py",
	"django":  ".py",
	"gin":     ".go",
	"echo":    ".go",
}

// migrationExtension returns the source extension for the given framework,
// defaulting to .js as the original tool did.
func migrationExtension(framework string) string {
	if ext, ok := frameworkExtensions[strings.ToLower(framework)]; ok {
		return ext
	}
	return ".js"
}
