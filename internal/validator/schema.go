package validator

// reportSchema is the structural contract for oracle output. It mirrors the
// field list in ingest.Instruction; ranges are deliberately absent because
// out-of-range values are reported as warnings, not rejected.
const reportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["scoreOverview", "improvementSuggestions", "spendingAnalysis", "aiInsights", "trustFactorAnalysis", "recommendedCreditLimit", "scorePercentile"],
  "properties": {
    "scoreOverview": {
      "type": "object",
      "required": ["trustScore", "trustLevel", "scoreExplanation", "scoreBreakdown"],
      "properties": {
        "trustScore": {"type": "integer"},
        "trustLevel": {"type": "string"},
        "scoreExplanation": {"type": "string"},
        "scoreBreakdown": {
          "type": "object",
          "required": ["incomeStability", "spendingDiscipline", "savingsBehavior", "paymentConsistency", "accountHealth"],
          "properties": {
            "incomeStability": {"type": "number"},
            "spendingDiscipline": {"type": "number"},
            "savingsBehavior": {"type": "number"},
            "paymentConsistency": {"type": "number"},
            "accountHealth": {"type": "number"}
          }
        }
      }
    },
    "improvementSuggestions": {
      "type": "object",
      "required": ["whyThisScore", "factors", "actionableAdvice"],
      "properties": {
        "whyThisScore": {"type": "string"},
        "factors": {"type": ["array", "null"], "items": {"$ref": "#/definitions/factor"}},
        "actionableAdvice": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "properties": {
              "title": {"type": "string"},
              "description": {"type": "string"},
              "potentialImpact": {"type": "string"}
            }
          }
        }
      }
    },
    "spendingAnalysis": {
      "type": "object",
      "required": ["categories", "totalSpending", "totalIncome", "savingsRate", "spendingHabitsText"],
      "properties": {
        "categories": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "required": ["name", "percentage"],
            "properties": {
              "name": {"type": "string"},
              "percentage": {"type": "number"},
              "amount": {"type": "number"},
              "color": {"type": "string"}
            }
          }
        },
        "totalSpending": {"type": "number"},
        "totalIncome": {"type": "number"},
        "savingsRate": {"type": "number"},
        "spendingHabitsText": {"type": "string"}
      }
    },
    "aiInsights": {
      "type": "object",
      "required": ["financialHealthSummary", "riskLevel", "riskExplanation", "spendingBehavior"],
      "properties": {
        "financialHealthSummary": {"type": "string"},
        "riskLevel": {"type": "string"},
        "riskExplanation": {"type": "string"},
        "spendingBehavior": {
          "type": "object",
          "required": ["patterns", "unusualActivity", "consistencyScore"],
          "properties": {
            "patterns": {"type": ["array", "null"], "items": {"type": "string"}},
            "unusualActivity": {"type": "string"},
            "consistencyScore": {"type": "string"}
          }
        }
      }
    },
    "trustFactorAnalysis": {
      "type": "object",
      "required": ["positiveSignals", "missingSignals", "riskFactors"],
      "properties": {
        "positiveSignals": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "properties": {
              "signal": {"type": "string"},
              "description": {"type": "string"},
              "strength": {"type": "string"}
            }
          }
        },
        "missingSignals": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "properties": {
              "signal": {"type": "string"},
              "howToFix": {"type": "string"}
            }
          }
        },
        "riskFactors": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "properties": {
              "factor": {"type": "string"},
              "traditionalBankView": {"type": "string"},
              "credzoView": {"type": "string"}
            }
          }
        }
      }
    },
    "creditLimitBreakdown": {
      "type": ["object", "null"],
      "properties": {
        "approvedLimit": {"type": ["number", "null"]},
        "maxEligibleLimit": {"type": ["number", "null"]},
        "limitReasoning": {"type": ["string", "null"]},
        "incomeToLimitRatio": {"type": ["string", "null"]},
        "limitFactors": {"type": ["array", "null"], "items": {"$ref": "#/definitions/factor"}},
        "repaymentCapacity": {"type": ["number", "null"]},
        "confidenceLevel": {"type": ["string", "null"]}
      }
    },
    "recommendedCreditLimit": {"type": "number"},
    "scorePercentile": {"type": "number"}
  },
  "definitions": {
    "factor": {
      "type": "object",
      "properties": {
        "factor": {"type": "string"},
        "impact": {"type": "string"},
        "detail": {"type": "string"}
      }
    }
  }
}`
