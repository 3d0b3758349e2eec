package lens

import "fmt"

// Operation holds a GraphQL operation name and its document.
type Operation struct {
	Name  string
	Query string
}

// OperationByName returns a registered operation, or an error if unknown.
func OperationByName(name string) (Operation, error) {
	op, ok := Operations[name]
	if !ok {
		return Operation{}, fmt.Errorf("unknown operation: %s", name)
	}
	return op, nil
}

const profileFields = `
fragment ProfileFields on Profile {
  id
  handle
  name
  bio
  ownedBy
  isDefault
  dispatcher {
    canUseRelay
  }
  stats {
    totalFollowers
    totalFollowing
    totalPosts
  }
  picture {
    __typename
    ... on MediaSet {
      original {
        url
      }
    }
    ... on NftImage {
      uri
    }
  }
}
`

const publicationFields = `
fragment StatsFields on PublicationStats {
  totalAmountOfComments
  totalAmountOfMirrors
  totalAmountOfCollects
}

fragment PublicationFields on Publication {
  __typename
  ... on Post {
    id
    createdAt
    profile {
      ...ProfileFields
    }
    metadata {
      content
    }
    stats {
      ...StatsFields
    }
  }
  ... on Comment {
    id
    createdAt
    profile {
      ...ProfileFields
    }
    metadata {
      content
    }
    stats {
      ...StatsFields
    }
  }
  ... on Mirror {
    id
    createdAt
    profile {
      ...ProfileFields
    }
    mirrorOf {
      __typename
      ... on Post {
        id
        createdAt
        profile {
          ...ProfileFields
        }
        metadata {
          content
        }
        stats {
          ...StatsFields
        }
      }
      ... on Comment {
        id
        createdAt
        profile {
          ...ProfileFields
        }
        metadata {
          content
        }
        stats {
          ...StatsFields
        }
      }
    }
  }
}
`

// Operations maps operation names to their GraphQL documents.
var Operations = map[string]Operation{
	"Profile": {Name: "Profile", Query: `query Profile($request: SingleProfileQueryRequest!) {
  profile(request: $request) {
    ...ProfileFields
  }
}
` + profileFields},

	"RecommendedProfiles": {Name: "RecommendedProfiles", Query: `query RecommendedProfiles {
  recommendedProfiles {
    ...ProfileFields
  }
}
` + profileFields},

	"ExploreFeed": {Name: "ExploreFeed", Query: `query ExploreFeed($request: ExplorePublicationRequest!) {
  explorePublications(request: $request) {
    items {
      ...PublicationFields
    }
    pageInfo {
      next
    }
  }
}
` + publicationFields + profileFields},

	"Timeline": {Name: "Timeline", Query: `query Timeline($request: FeedRequest!) {
  feed(request: $request) {
    items {
      root {
        ...PublicationFields
      }
    }
    pageInfo {
      next
    }
  }
}
` + publicationFields + profileFields},

	"FeedHighlights": {Name: "FeedHighlights", Query: `query FeedHighlights($request: FeedHighlightsRequest!) {
  feedHighlights(request: $request) {
    items {
      ...PublicationFields
    }
    pageInfo {
      next
    }
  }
}
` + publicationFields + profileFields},

	"Refresh": {Name: "Refresh", Query: `mutation Refresh($request: RefreshRequest!) {
  refresh(request: $request) {
    accessToken
    refreshToken
  }
}
`},
}
