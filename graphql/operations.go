package graphql

import "fmt"

// Mutations and queries, aliased so every payload decodes from "data"
// (or "urls" for signed upload URLs).

const CreateProject = `
mutation createProject($data: CreateProjectData!) {
  data: createProject(data: $data) {
    id
  }
}`

const DeleteProjectAsynchronously = `
mutation deleteProjectAsynchronously($where: ProjectWhere!) {
  data: deleteProjectAsynchronously(where: $where) {
    id
  }
}`

const UpdatePropertiesInProject = `
mutation updatePropertiesInProject(
  $archived: Boolean
  $canNavigateBetweenAssets: Boolean
  $canSkipAsset: Boolean
  $consensusMark: Float
  $consensusTotCoverage: Int
  $description: String
  $honeypotMark: Float
  $inputType: InputType
  $instructions: String
  $jsonInterface: String
  $metadataTypes: JSON
  $minConsensusSize: Int
  $numberOfAssets: Int
  $numberOfRemainingAssets: Int
  $numberOfReviewedAssets: Int
  $numberOfSkippedAssets: Int
  $projectID: ID!
  $reviewCoverage: Int
  $shouldRelaunchKpiComputation: Boolean
  $title: String
  $useHoneyPot: Boolean
) {
  data: updatePropertiesInProject(
    where: { id: $projectID }
    data: {
      archived: $archived
      canNavigateBetweenAssets: $canNavigateBetweenAssets
      canSkipAsset: $canSkipAsset
      consensusMark: $consensusMark
      consensusTotCoverage: $consensusTotCoverage
      description: $description
      honeypotMark: $honeypotMark
      inputType: $inputType
      instructions: $instructions
      jsonInterface: $jsonInterface
      metadataTypes: $metadataTypes
      minConsensusSize: $minConsensusSize
      numberOfAssets: $numberOfAssets
      numberOfRemainingAssets: $numberOfRemainingAssets
      numberOfReviewedAssets: $numberOfReviewedAssets
      numberOfSkippedAssets: $numberOfSkippedAssets
      reviewCoverage: $reviewCoverage
      shouldRelaunchKpiComputation: $shouldRelaunchKpiComputation
      title: $title
      useHoneyPot: $useHoneyPot
    }
  ) {
    id
  }
}`

const AppendToRoles = `
mutation appendToRoles($data: AppendToRolesData!, $where: ProjectWhere!) {
  data: appendToRoles(data: $data, where: $where) {
    id
    roles {
      id
      role
      user {
        id
        email
      }
    }
  }
}`

const UpdatePropertiesInRole = `
mutation updatePropertiesInRole($roleID: ID!, $projectID: ID!, $userID: ID!, $role: ProjectRole!) {
  data: updatePropertiesInRole(
    where: { id: $roleID }
    data: { projectID: $projectID, userID: $userID, role: $role }
  ) {
    id
  }
}`

const DeleteFromRoles = `
mutation deleteFromRoles($where: ProjectUserWhere!) {
  data: deleteFromRoles(where: $where) {
    id
  }
}`

// Projects returns the projects query with the requested field fragment.
func Projects(fragment string) string {
	return fmt.Sprintf(`
query projects($where: ProjectWhere!, $first: PageSize!, $skip: Int!) {
  data: projects(where: $where, first: $first, skip: $skip) {
    %s
  }
}`, fragment)
}

const CountProjects = `
query countProjects($where: ProjectWhere!) {
  data: countProjects(where: $where)
}`

// Assets returns the assets query with the requested field fragment.
func Assets(fragment string) string {
	return fmt.Sprintf(`
query assets($where: AssetWhere!, $first: PageSize!, $skip: Int!) {
  data: assets(where: $where, first: $first, skip: $skip) {
    %s
  }
}`, fragment)
}

const AppendManyToDataset = `
mutation appendManyToDataset($data: AppendManyToDatasetData!, $where: DatasetWhere!) {
  data: appendManyToDataset(data: $data, where: $where) {
    id
  }
}`

const AppendManyFramesToDataset = `
mutation appendManyFramesToDataset($data: AppendManyFramesToDatasetAsynchronouslyData!, $where: DatasetWhere!) {
  data: appendManyFramesToDatasetAsynchronously(data: $data, where: $where) {
    id
  }
}`

const CreateUploadBucketSignedURLs = `
query urls($filePaths: [String!]) {
  urls: createUploadBucketSignedUrls(filePaths: $filePaths)
}`

const CreateNotification = `
mutation createNotification($data: CreateNotificationData!) {
  data: createNotification(data: $data) {
    id
  }
}`

const UpdatePropertiesInNotification = `
mutation updatePropertiesInNotification($notificationID: ID!, $hasBeenSeen: Boolean, $status: NotificationStatus, $url: String) {
  data: updatePropertiesInNotification(
    where: { id: $notificationID }
    data: { hasBeenSeen: $hasBeenSeen, status: $status, url: $url }
  ) {
    id
  }
}`

const ProjectVersions = `
query projectVersions($where: ProjectVersionWhere!, $first: PageSize!, $skip: Int!) {
  data: projectVersions(where: $where, first: $first, skip: $skip) {
    id
    name
    content
    createdAt
    projectId
  }
}`

const UpdatePropertiesInProjectVersion = `
mutation updatePropertiesInProjectVersion($id: ID!, $content: String) {
  data: updatePropertiesInProjectVersion(where: { id: $id }, data: { content: $content }) {
    id
    content
  }
}`

const DataConnections = `
query dataConnections($where: DataConnectionsWhere!, $first: PageSize!, $skip: Int!) {
  data: dataConnections(where: $where, first: $first, skip: $skip) {
    id
    lastChecked
    numberOfAssets
    selectedFolders
    projectId
  }
}`

// Labels returns the labels query with the requested field fragment.
func Labels(fragment string) string {
	return fmt.Sprintf(`
query labels($where: LabelWhere!, $first: PageSize!, $skip: Int!) {
  data: labels(where: $where, first: $first, skip: $skip) {
    %s
  }
}`, fragment)
}
