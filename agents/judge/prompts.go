/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

// instructions holds the call instructions per mode. The request itself is
// sent as the structured input, so the instructions refer to its fields.
var instructions = map[JudgmentMode]string{
	GoldenMode: `You are evaluating actual_answer against the reference answer in reference_answer.
Judge it only on the given criterion and return a score from 0.0 to 1.0:

- 1.0: equivalent to or better than the reference. Wording, order and
  style differences that keep the meaning are not penalized.
  Suggestions must be empty.
- 0.75-0.99: meets the criterion with minor gaps. Use 0.90-0.99 for
  presentation issues and 0.75-0.89 for small content gaps.
- 0.50-0.74: partially meets the criterion with notable gaps.
- 0.25-0.49: significant problems, some correct elements.
- 0.0-0.24: fails the criterion or contradicts the reference.

Below 1.0, give specific suggestions that explain the missing points.
Avoid generic advice and do not repeat a suggestion in broader words.
Set mode to "golden".`,

	BenchmarkMode: `Two candidates are compared on the given criterion: reference_answer
("foo") and actual_answer ("bar"). Return a score from -1.0 to 1.0:

- -1.0: foo completely dominates bar.
- -0.99 to -0.01: foo is better; the magnitude reflects by how much.
- 0.0: both are equivalent in quality and effectiveness.
- 0.01 to 0.99: bar is better; the magnitude reflects by how much.
- 1.0: bar completely dominates foo.

Explain the decisive differences in reasoning. Suggestions describe how
the weaker candidate could close the gap. Set mode to "benchmark".`,

	StandaloneMode: `Evaluate actual_answer on the given criterion alone; there is no
reference answer. Return a score from 0.0 to 1.0:

- 1.0: perfectly meets the criterion. Suggestions must be empty.
- 0.75-0.99: meets the criterion with minor variations.
- 0.50-0.74: partially meets the criterion with notable gaps.
- 0.25-0.49: significant problems meeting the criterion.
- 0.0-0.24: fails the criterion or contradicts it.

Below 1.0, give specific suggestions. Set mode to "standalone".`,
}
