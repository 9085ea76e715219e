package mcpserver

// ModelURI is the resource URI of ModelContract.
const ModelURI = "cfr://model"

// ModelContract describes the diagram model so LLM consumers can reason
// about the effects of the tools before calling them.
const ModelContract = `# Consciousness-First Reality Model

The diagram is a vertical chain of six stages of consciousness, from the
Absolute Void down to the Open Future.

## Stages

| Index | Id     | Label | Meaning            | Collapse boost |
|-------|--------|-------|--------------------|----------------|
| 0     | ONE    | ONE   | The Absolute Void  | 100            |
| 1     | one    | one   | Vortex of Focus    | 85             |
| 2     | Self   | Self  | Self-Awareness     | 70             |
| 3     | one+   | one+  | Embodied Self      | 55             |
| 4     | ONE+   | ONE+  | Value Fulfilled    | 40             |
| 5     | ∞      | ∞     | Open Future        | 25             |

The id ` + "`" + `infinity` + "`" + ` is accepted as an alias of ` + "`" + `∞` + "`" + `.

## Parameters

Three integers, each clamped to 0..100 and defaulting to 50:

- ` + "`" + `distinctions` + "`" + `
- ` + "`" + `ideation` + "`" + `
- ` + "`" + `complexity` + "`" + `

## Collapse

Collapsing a stage for the first time:

1. adds its boost to distinctions (clamped),
2. adds 0.7 x boost to ideation (rounded, clamped),
3. records the insight "Collapsed distinction at <label>".

Collapsing an already collapsed or unknown stage changes nothing.
Reset clears every collapse. It leaves parameters and insights untouched.

## Coherence

    vortexStability = distinctions * ideation / 100
    nestingDepth    = log2(complexity + 1)
    coherence       = sqrt(vortexStability * nestingDepth) * 10

Coherence is 0 when complexity is 0.

## Insights

The ten most recent insights are kept. Older ones are discarded.
`
