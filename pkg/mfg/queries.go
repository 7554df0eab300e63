package mfg

import "github.com/matzehuels/fusiongraph/pkg/graphql"

// Lookup documents share the hub -> project -> item path; only the selection
// on the tip root component version differs.

var flatLookupQuery = graphql.MustParse(`
query GetModelHierarchy($hubName: String!, $projectName: String!, $componentName: String!) {
  hubs(filter: {name: $hubName}) {
    results {
      name
      projects(filter: {name: $projectName}) {
        results {
          name
          items(filter: {name: $componentName}) {
            results {
              ... on DesignItem {
                name
                tipRootComponentVersion {
                  id
                  name
                  allOccurrences {
                    results {
                      parentComponentVersion { id }
                      componentVersion { id name }
                    }
                    pagination { cursor }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`)

var occurrencesPageQuery = graphql.MustParse(`
query GetModelHierarchyPage($componentVersionId: ID!, $cursor: String) {
  componentVersion(componentVersionId: $componentVersionId) {
    id
    allOccurrences(pagination: {cursor: $cursor}) {
      results {
        parentComponentVersion { id }
        componentVersion { id name }
      }
      pagination { cursor }
    }
  }
}`)

var lazyLookupQuery = graphql.MustParse(`
query GetRootComponentVersion($hubName: String!, $projectName: String!, $componentName: String!) {
  hubs(filter: {name: $hubName}) {
    results {
      name
      projects(filter: {name: $projectName}) {
        results {
          name
          items(filter: {name: $componentName}) {
            results {
              ... on DesignItem {
                name
                tipRootComponentVersion {
                  id
                  name
                  occurrences {
                    results { componentVersion { id name } }
                    pagination { cursor }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`)

// expandTemplate is expanded by graphql.NewBatch once per placeholder id.
var expandTemplate = graphql.MustParse(`
query GetComponentVersions($componentVersionId: ID!) {
  componentVersion(componentVersionId: $componentVersionId) {
    id
    name
    occurrences {
      results { componentVersion { id name } }
      pagination { cursor }
    }
  }
}`)

var childrenPageQuery = graphql.MustParse(`
query GetOccurrencesPage($componentVersionId: ID!, $cursor: String) {
  componentVersion(componentVersionId: $componentVersionId) {
    id
    occurrences(pagination: {cursor: $cursor}) {
      results { componentVersion { id name } }
      pagination { cursor }
    }
  }
}`)

var thumbnailQuery = graphql.MustParse(`
query GetThumbnail($hubName: String!, $projectName: String!, $componentName: String!) {
  hubs(filter: {name: $hubName}) {
    results {
      name
      projects(filter: {name: $projectName}) {
        results {
          name
          items(filter: {name: $componentName}) {
            results {
              ... on DesignItem {
                name
                tipRootComponentVersion {
                  id
                  name
                  thumbnail { status signedUrl }
                }
              }
            }
          }
        }
      }
    }
  }
}`)

var derivativeQuery = graphql.MustParse(`
query GetGeometry($hubName: String!, $projectName: String!, $componentName: String!, $outputFormat: DerivativeOutputFormat!) {
  hubs(filter: {name: $hubName}) {
    results {
      name
      projects(filter: {name: $projectName}) {
        results {
          name
          items(filter: {name: $componentName}) {
            results {
              ... on DesignItem {
                name
                tipRootComponentVersion {
                  id
                  name
                  derivatives(derivativeInput: {outputFormat: $outputFormat, generate: true}) {
                    expires
                    signedUrl
                    status
                    progress
                    outputFormat
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`)

var physicalPropertiesQuery = graphql.MustParse(`
query GetPhysicalProperties($hubName: String!, $projectName: String!, $componentName: String!) {
  hubs(filter: {name: $hubName}) {
    results {
      name
      projects(filter: {name: $projectName}) {
        results {
          name
          items(filter: {name: $componentName}) {
            results {
              ... on DesignItem {
                name
                tipRootComponentVersion {
                  id
                  name
                  physicalProperties {
                    status
                    area { ...Measure }
                    volume { ...Measure }
                    mass { ...Measure }
                    density { ...Measure }
                    boundingBox {
                      length { ...Measure }
                      width { ...Measure }
                      height { ...Measure }
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}

fragment Measure on PhysicalPropertyValue {
  displayValue
  value
  definition { units { name } }
}`)

var componentLookupQuery = graphql.MustParse(`
query GetComponent($hubName: String!, $projectName: String!, $componentName: String!) {
  hubs(filter: {name: $hubName}) {
    results {
      id
      name
      projects(filter: {name: $projectName}) {
        results {
          id
          name
          items(filter: {name: $componentName}) {
            results {
              ... on DesignItem {
                id
                name
                tipRootComponentVersion { id name }
              }
            }
          }
        }
      }
    }
  }
}`)

var webhooksQuery = graphql.MustParse(`
query GetWebhooks($eventType: EventType!) {
  webhooks(filter: {eventType: $eventType}) {
    results { id eventType callbackUrl status }
  }
}`)

var createWebhookMutation = graphql.MustParse(`
mutation CreateWebhook($input: CreateWebhookInput!) {
  createWebhook(input: $input) {
    webhook { id eventType callbackUrl status }
  }
}`)

var deleteWebhookMutation = graphql.MustParse(`
mutation DeleteWebhook($webhookId: ID!) {
  deleteWebhook(input: {webhookId: $webhookId}) {
    id
  }
}`)
