package repository

import (
	"fmt"
	"strings"
)

const upsertUserCypher = `
MERGE (u:User {id: $id})
SET u += $props
RETURN u.id AS id
`

const upsertTransactionCypher = `
MATCH (origin:User {id: $originId})
MERGE (t:Transaction {id: $id})
SET t += $props
MERGE (origin)-[:MADE_TRANSACTION]->(t)
RETURN t.id AS id
`

const linkDestinationCypher = `
MATCH (t:Transaction {id: $id})
MATCH (dest:User {id: $destId})
MERGE (dest)-[:RECEIVED_TRANSACTION]->(t)
RETURN t.id AS id
`

const getUserCypher = `
MATCH (u:User {id: $id})
RETURN u.id AS id,
       u.name AS name,
       u.email AS email,
       u.phone AS phone,
       u.address AS address,
       u.country AS country,
       u.kycStatus AS kycStatus,
       u.riskScore AS riskScore,
       u.createdAt AS createdAt,
       u.updatedAt AS updatedAt
`

const getTransactionCypher = `
MATCH (t:Transaction {id: $id})
RETURN ` + transactionReturnColumns

const transactionReturnColumns = `t.id AS id,
       t.originUserId AS originUserId,
       t.destinationUserId AS destinationUserId,
       t.amount AS amount,
       t.currency AS currency,
       t.type AS type,
       t.status AS status,
       t.ipAddress AS ipAddress,
       t.deviceId AS deviceId,
       t.riskScore AS riskScore,
       t.riskLevel AS riskLevel,
       t.timestamp AS timestamp,
       t.metadataJson AS metadataJson,
       t.createdAt AS createdAt,
       t.updatedAt AS updatedAt
`

const deleteUserCypher = `
OPTIONAL MATCH (u:User {id: $id})
WITH collect(u) AS nodes
FOREACH (n IN nodes | DETACH DELETE n)
RETURN size(nodes) AS deleted
`

const deleteTransactionCypher = `
OPTIONAL MATCH (t:Transaction {id: $id})
WITH collect(t) AS nodes
FOREACH (n IN nodes | DETACH DELETE n)
RETURN size(nodes) AS deleted
`

const listUsersCypherTemplate = `
MATCH (u:User)
%s
RETURN u.id AS id,
       u.name AS name,
       u.email AS email,
       u.phone AS phone,
       u.address AS address,
       u.country AS country,
       u.kycStatus AS kycStatus,
       u.riskScore AS riskScore,
       u.createdAt AS createdAt,
       u.updatedAt AS updatedAt
ORDER BY %s
SKIP $skip LIMIT $limit
`

const countUsersCypherTemplate = `
MATCH (u:User)
%s
RETURN count(u) AS total
`

const userFilterClause = `
WHERE ($search = "" OR toLower(coalesce(u.name, "")) CONTAINS $search
       OR toLower(coalesce(u.email, "")) CONTAINS $search
       OR toLower(coalesce(u.phone, "")) CONTAINS $search
       OR toLower(u.id) CONTAINS $search)
  AND ($country = "" OR u.country = $country)
`

const listTransactionsCypherTemplate = `
MATCH (t:Transaction)
%s
RETURN ` + transactionReturnColumns + `
ORDER BY %s
SKIP $skip LIMIT $limit
`

const countTransactionsCypherTemplate = `
MATCH (t:Transaction)
%s
RETURN count(t) AS total
`

const transactionFilterClause = `
WHERE ($status = "" OR t.status = $status)
  AND ($type = "" OR t.type = $type)
  AND ($userId = "" OR t.originUserId = $userId OR t.destinationUserId = $userId)
  AND ($minAmount <= 0 OR coalesce(t.amount, 0.0) >= $minAmount)
  AND ($maxAmount <= 0 OR coalesce(t.amount, 0.0) <= $maxAmount)
  AND ($search = "" OR toLower(t.id) CONTAINS $search
       OR toLower(coalesce(t.originUserId, "")) CONTAINS $search
       OR toLower(coalesce(t.destinationUserId, "")) CONTAINS $search)
`

const transactionTypeCountsCypher = `
MATCH (t:Transaction)
WHERE t.type IS NOT NULL
RETURN t.type AS value, count(t) AS count
ORDER BY count DESC
`

const transactionStatusCountsCypher = `
MATCH (t:Transaction)
WHERE t.status IS NOT NULL
RETURN t.status AS value, count(t) AS count
ORDER BY count DESC
`

// The relationship type is formatted in, not parameterized, because the
// store does not parameterize relationship types. Callers must pass a
// value from the closed domain.EdgeType set, never raw payload text.
const upsertProviderLinkCypherTemplate = `
MATCH (a:User {id: $sourceId})
MATCH (b:User {id: $targetId})
MERGE (a)-[r:%s]->(b)
SET r.confidence = $confidence,
    r.source = 'provider'
RETURN count(r) AS edges
`

const exportUsersCypher = `
MATCH (u:User)
RETURN u.id AS id,
       u.name AS name,
       u.email AS email,
       u.phone AS phone,
       u.address AS address,
       u.country AS country,
       u.kycStatus AS kycStatus,
       u.riskScore AS riskScore,
       u.createdAt AS createdAt,
       u.updatedAt AS updatedAt
ORDER BY u.id
`

const exportTransactionsCypher = `
MATCH (t:Transaction)
RETURN ` + transactionReturnColumns + `
ORDER BY datetime(t.timestamp) DESC
`

func userOrderClause(field, order string) string {
	dir := "ASC"
	if strings.EqualFold(order, "DESC") {
		dir = "DESC"
	}
	switch strings.ToLower(field) {
	case "name":
		return fmt.Sprintf("toLower(coalesce(u.name, \"\")) %s", dir)
	case "email":
		return fmt.Sprintf("toLower(coalesce(u.email, \"\")) %s", dir)
	case "riskscore":
		return fmt.Sprintf("coalesce(u.riskScore, 0.0) %s", dir)
	case "createdat":
		return fmt.Sprintf("datetime(u.createdAt) %s", dir)
	default:
		return fmt.Sprintf("u.id %s", dir)
	}
}

func transactionOrderClause(field, order string) string {
	dir := "DESC"
	if strings.EqualFold(order, "ASC") {
		dir = "ASC"
	}
	switch strings.ToLower(field) {
	case "amount":
		return fmt.Sprintf("coalesce(t.amount, 0.0) %s", dir)
	case "status":
		return fmt.Sprintf("t.status %s", dir)
	case "type":
		return fmt.Sprintf("t.type %s", dir)
	case "id":
		return fmt.Sprintf("t.id %s", dir)
	default:
		return fmt.Sprintf("datetime(t.timestamp) %s", dir)
	}
}
